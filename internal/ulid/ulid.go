// Package ulid wraps github.com/oklog/ulid/v2 with prefixed identifiers.
//
// IDs look like "req-01HZX3..." where the prefix names the kind of entity
// and the remainder is a monotonic ULID, so ids of one kind sort by creation time.
package ulid

import (
	"crypto/rand"
	"database/sql/driver"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	// PrefixRequest marks a single pipeline invocation
	PrefixRequest = "req"

	// PrefixHistory marks a stored review history entry
	PrefixHistory = "hist"

	// PrefixAnalysis marks a tool-based analysis run
	PrefixAnalysis = "ana"

	// PrefixSeparator separates the prefix from the ULID
	PrefixSeparator = "-"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// ULID is a ULID with an optional prefix
type ULID struct {
	ulid.ULID
	prefix string
}

// NewWithTime creates an unprefixed ULID for the given timestamp
func NewWithTime(t time.Time) ULID {
	entropyLock.Lock()
	defer entropyLock.Unlock()
	return ULID{ULID: ulid.MustNew(ulid.Timestamp(t), entropy)}
}

// GenerateWithPrefix creates a ULID for the current time carrying prefix
func GenerateWithPrefix(prefix string) ULID {
	id := NewWithTime(time.Now())
	id.prefix = prefix
	return id
}

// Parse accepts both "prefix-ULID" and bare ULID strings
func Parse(id string) (ULID, error) {
	prefix, raw := "", id
	if i := strings.LastIndex(id, PrefixSeparator); i >= 0 {
		prefix, raw = id[:i], id[i+1:]
	}

	parsed, err := ulid.Parse(raw)
	if err != nil {
		return ULID{}, fmt.Errorf("parsing ulid %q: %w", id, err)
	}
	return ULID{ULID: parsed, prefix: prefix}, nil
}

// Validate reports whether id parses as a (possibly prefixed) ULID
func Validate(id string) bool {
	_, err := Parse(id)
	return err == nil
}

// Prefix returns the prefix, empty when none was set
func (u ULID) Prefix() string {
	return u.prefix
}

// IsZero reports whether the underlying ULID is the zero value
func (u ULID) IsZero() bool {
	return u.ULID == ulid.ULID{}
}

// Time returns the timestamp encoded in the ULID
func (u ULID) Time() time.Time {
	return ulid.Time(u.ULID.Time())
}

// String renders "prefix-ULID", or the bare ULID without a prefix
func (u ULID) String() string {
	if u.prefix == "" {
		return u.ULID.String()
	}
	return u.prefix + PrefixSeparator + u.ULID.String()
}

// Value implements driver.Valuer so ids are stored as text
func (u ULID) Value() (driver.Value, error) {
	return u.String(), nil
}

// Scan implements sql.Scanner
func (u *ULID) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into ULID", src)
	}

	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// RequestID generates a new request id
func RequestID() string {
	return GenerateWithPrefix(PrefixRequest).String()
}

// HistoryID generates a new history entry id
func HistoryID() string {
	return GenerateWithPrefix(PrefixHistory).String()
}

// AnalysisID generates a new tool analysis id
func AnalysisID() string {
	return GenerateWithPrefix(PrefixAnalysis).String()
}
