package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/tildaslashalef/codecritic/internal/loggy"
)

// ErrEntryNotFound is returned when no entry has the requested id
var ErrEntryNotFound = errors.New("history entry not found")

const (
	// DefaultListLimit is used when ListOptions.Limit is not positive
	DefaultListLimit = 20
	maxListLimit     = 500

	// Fixed width keeps lexical order equal to time order
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

var entryColumns = []string{
	"id",
	"label",
	"task",
	"language",
	"model",
	"original_code",
	"feedback",
	"summary",
	"improved_code",
	"error_lines",
	"created_at",
}

// ListOptions filters and bounds List
type ListOptions struct {
	Limit    int
	Language string // empty matches all
	Task     string // empty matches all
}

func (o ListOptions) limit() uint64 {
	switch {
	case o.Limit <= 0:
		return DefaultListLimit
	case o.Limit > maxListLimit:
		return maxListLimit
	default:
		return uint64(o.Limit)
	}
}

// Repository defines persistence for history entries
type Repository interface {
	Save(ctx context.Context, entry *Entry) error
	Get(ctx context.Context, id string) (*Entry, error)
	List(ctx context.Context, opts ListOptions) ([]*Entry, error)
	Delete(ctx context.Context, id string) error
}

// SQLRepository implements Repository on SQLite
type SQLRepository struct {
	db      *sql.DB
	logger  *loggy.Logger
	builder sq.StatementBuilderType
}

// NewSQLRepository creates a new history SQL repository
func NewSQLRepository(db *sql.DB, logger *loggy.Logger) *SQLRepository {
	return &SQLRepository{
		db:      db,
		logger:  logger,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

// Save inserts a new entry
func (r *SQLRepository) Save(ctx context.Context, entry *Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.ErrorLines == nil {
		entry.ErrorLines = Lines{}
	}

	query, args, err := r.builder.
		Insert("review_history").
		Columns(entryColumns...).
		Values(
			entry.ID,
			entry.Label,
			entry.Task,
			entry.Language,
			entry.Model,
			entry.OriginalCode,
			entry.Feedback,
			entry.Summary,
			entry.ImprovedCode,
			entry.ErrorLines,
			entry.CreatedAt.UTC().Format(timeLayout),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no rows affected when saving history entry")
	}

	r.logger.Debug("Saved history entry", "id", entry.ID, "label", entry.Label)
	return nil
}

// Get retrieves an entry by id
func (r *SQLRepository) Get(ctx context.Context, id string) (*Entry, error) {
	query, args, err := r.builder.
		Select(entryColumns...).
		From("review_history").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("scanning history entry: %w", err)
	}
	return entry, nil
}

// List returns entries newest first
func (r *SQLRepository) List(ctx context.Context, opts ListOptions) ([]*Entry, error) {
	qb := r.builder.
		Select(entryColumns...).
		From("review_history")
	if opts.Language != "" {
		qb = qb.Where(sq.Eq{"language": opts.Language})
	}
	if opts.Task != "" {
		qb = qb.Where(sq.Eq{"task": opts.Task})
	}

	query, args, err := qb.
		OrderBy("created_at DESC", "id DESC").
		Limit(opts.limit()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	entries := []*Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history rows: %w", err)
	}

	return entries, nil
}

// Delete removes an entry by id
func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	query, args, err := r.builder.
		Delete("review_history").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building delete query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting history entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrEntryNotFound
	}

	r.logger.Debug("Deleted history entry", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var entry Entry
	var createdAtStr string

	err := row.Scan(
		&entry.ID,
		&entry.Label,
		&entry.Task,
		&entry.Language,
		&entry.Model,
		&entry.OriginalCode,
		&entry.Feedback,
		&entry.Summary,
		&entry.ImprovedCode,
		&entry.ErrorLines,
		&createdAtStr,
	)
	if err != nil {
		return nil, err
	}

	entry.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &entry, nil
}
