// Package history stores extraction results so past reviews can be listed
// and shown again.
package history

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/goombaio/namegenerator"

	"github.com/tildaslashalef/codecritic/internal/extractor"
	"github.com/tildaslashalef/codecritic/internal/ulid"
)

// Entry is one saved result
type Entry struct {
	ID           string    `json:"id"`
	Label        string    `json:"label"`
	Task         string    `json:"task"`
	Language     string    `json:"language"`
	Model        string    `json:"model,omitempty"`
	OriginalCode string    `json:"original_code"`
	Feedback     string    `json:"feedback"`
	Summary      string    `json:"summary"`
	ImprovedCode string    `json:"improved_code"`
	ErrorLines   Lines     `json:"error_lines"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewEntry builds an entry from an extraction result
func NewEntry(task, language, model, code string, result *extractor.ExtractionResult) *Entry {
	if result == nil {
		result = extractor.EmptyResult()
	}
	lines := Lines(result.ErrorLines)
	if lines == nil {
		lines = Lines{}
	}

	now := time.Now().UTC()
	return &Entry{
		ID:           ulid.HistoryID(),
		Label:        GenerateLabel(now.UnixNano()),
		Task:         task,
		Language:     language,
		Model:        model,
		OriginalCode: code,
		Feedback:     result.Feedback,
		Summary:      result.Summary,
		ImprovedCode: result.ImprovedCode,
		ErrorLines:   lines,
		CreatedAt:    now,
	}
}

// Extraction rebuilds the extraction result stored in the entry
func (e *Entry) Extraction() *extractor.ExtractionResult {
	lines := []int(e.ErrorLines)
	if lines == nil {
		lines = []int{}
	}
	return &extractor.ExtractionResult{
		Feedback:     e.Feedback,
		ImprovedCode: e.ImprovedCode,
		ErrorLines:   lines,
		Summary:      e.Summary,
	}
}

// GenerateLabel returns a memorable name such as "quiet-forest"
func GenerateLabel(seed int64) string {
	return namegenerator.NewNameGenerator(seed).Generate()
}

// Lines is a list of line numbers stored as a JSON array
type Lines []int

// Value implements the driver.Valuer interface for database serialization.
func (l Lines) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]int(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (l *Lines) Scan(src interface{}) error {
	var source []byte
	switch src := src.(type) {
	case string:
		source = []byte(src)
	case []byte:
		source = src
	case nil:
		*l = Lines{}
		return nil
	default:
		return errors.New("incompatible type for Lines")
	}

	if len(source) == 0 {
		*l = Lines{}
		return nil
	}

	var lines []int
	if err := json.Unmarshal(source, &lines); err != nil {
		return err
	}
	if lines == nil {
		lines = []int{}
	}
	*l = lines
	return nil
}
