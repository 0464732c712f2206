// Package cart keeps a shopper's cart lines and persists them after every
// mutation.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/repository"
	"github.com/fjod/go_storefront/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Store struct {
	repo repository.Repository
	key  string
	log  *zap.Logger

	mu    sync.RWMutex
	lines []domain.CartLine
	open  bool
}

// NewStore restores the lines saved under key. A missing or unreadable
// payload, or a failing repository, starts an empty cart.
func NewStore(ctx context.Context, repo repository.Repository, key string, log *zap.Logger) *Store {
	s, _ := openStore(ctx, repo, key, log)
	return s
}

// openStore is NewStore that also reports a repository failure. The returned
// store is usable either way, but after an error it does not reflect what is
// saved.
func openStore(ctx context.Context, repo repository.Repository, key string, log *zap.Logger) (*Store, error) {
	s := &Store{
		repo: repo,
		key:  key,
		log:  logger.OrNop(log),
	}
	lines, err := s.load(ctx)
	s.lines = lines
	return s, err
}

// load returns an error only when the repository could not be read. Missing
// and corrupt payloads yield an empty cart.
func (s *Store) load(ctx context.Context) ([]domain.CartLine, error) {
	log := logger.FromContext(ctx, s.log).With(zap.String("key", s.key))

	data, err := s.repo.Get(ctx, s.key)
	if errors.Is(err, repository.ErrNotFound) {
		log.Debug("no saved cart")
		return nil, nil
	}
	if err != nil {
		log.Warn("failed to load cart", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		log.Warn("discarding corrupt cart payload", zap.Error(err))
		return nil, nil
	}
	return mergeLoaded(lines), nil
}

// mergeLoaded drops unusable lines and folds lines sharing an identity key
// into the first of them.
func mergeLoaded(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, 0, len(lines))
	index := make(map[domain.LineKey]int, len(lines))
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity <= 0 {
			continue
		}
		if i, ok := index[l.Key()]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		index[l.Key()] = len(out)
		out = append(out, l)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// AddLine merges quantity into the line with the same (product, size, color)
// or appends a new line, and opens the cart.
func (s *Store) AddLine(ctx context.Context, p domain.Product, quantity int, size, color string) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	line := domain.NewCartLine(p, quantity, size, color)
	merged := false
	for i := range s.lines {
		if s.lines[i].Key() == line.Key() {
			s.lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.lines = append(s.lines, line)
	}
	s.open = true

	return s.save(ctx)
}

// RemoveLine drops every line of productID, whatever its size or color.
func (s *Store) RemoveLine(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]domain.CartLine, 0, len(s.lines))
	for _, l := range s.lines {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	s.lines = kept

	return s.save(ctx)
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	return s.save(ctx)
}

// ToggleVisibility flips the open flag and returns the new value.
func (s *Store) ToggleVisibility() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.open = !s.open
	return s.open
}

// Lines returns a copy of the lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLines()
}

func (s *Store) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open
}

// Count is the sum of line quantities.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return count(s.lines)
}

// Subtotal is the sum of price × quantity over all lines.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return subtotal(s.lines)
}

func (s *Store) Snapshot() domain.CartSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CartSnapshot{
		Lines:    s.copyLines(),
		IsOpen:   s.open,
		Count:    count(s.lines),
		Subtotal: subtotal(s.lines),
	}
}

// save must be called with mu held.
func (s *Store) save(ctx context.Context) error {
	lines := s.lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.repo.Put(ctx, s.key, data); err != nil {
		logger.FromContext(ctx, s.log).Error("failed to persist cart", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}

func (s *Store) copyLines() []domain.CartLine {
	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func count(lines []domain.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func subtotal(lines []domain.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return total
}
