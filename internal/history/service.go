package history

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tildaslashalef/codecritic/internal/extractor"
	"github.com/tildaslashalef/codecritic/internal/loggy"
)

// Service records and retrieves past results
type Service struct {
	repo   Repository
	logger *loggy.Logger
}

// NewService creates a history service backed by db
func NewService(db *sql.DB, logger *loggy.Logger) *Service {
	return NewServiceWithRepository(NewSQLRepository(db, logger), logger)
}

// NewServiceWithRepository creates a history service over repo
func NewServiceWithRepository(repo Repository, logger *loggy.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record saves an extraction result together with the code it came from
func (s *Service) Record(ctx context.Context, task, language, model, code string, result *extractor.ExtractionResult) (*Entry, error) {
	entry := NewEntry(task, language, model, code, result)
	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, fmt.Errorf("saving history entry: %w", err)
	}

	s.logger.Info("Recorded result", "id", entry.ID, "label", entry.Label, "task", task)
	return entry, nil
}

// Recent lists entries newest first
func (s *Service) Recent(ctx context.Context, opts ListOptions) ([]*Entry, error) {
	entries, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	return entries, nil
}

// Show returns a single entry
func (s *Service) Show(ctx context.Context, id string) (*Entry, error) {
	return s.repo.Get(ctx, id)
}

// Remove deletes a single entry
func (s *Service) Remove(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Removed history entry", "id", id)
	return nil
}
