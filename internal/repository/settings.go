package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Settings stores operator settings in a Repository.
type Settings struct {
	repo Repository
	// seed is served until the operator stores a spreadsheet id.
	seed string
}

func NewSettings(repo Repository, seedSpreadsheetID string) *Settings {
	return &Settings{repo: repo, seed: strings.TrimSpace(seedSpreadsheetID)}
}

// SpreadsheetID returns the configured spreadsheet id, or "" when none is set.
func (s *Settings) SpreadsheetID(ctx context.Context) (string, error) {
	v, err := s.repo.Get(ctx, SheetIDKey)
	if errors.Is(err, ErrNotFound) {
		return s.seed, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read spreadsheet id: %w", err)
	}
	return string(v), nil
}

// SetSpreadsheetID stores id. An empty id clears the setting.
func (s *Settings) SetSpreadsheetID(ctx context.Context, id string) error {
	if err := s.repo.Put(ctx, SheetIDKey, []byte(strings.TrimSpace(id))); err != nil {
		return fmt.Errorf("failed to store spreadsheet id: %w", err)
	}
	return nil
}
