// Package sheets writes catalog rows to the operator's spreadsheet. Updates
// are emulated by locating the row of an id and overwriting it by position.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/sheetrow"
	"github.com/fjod/go_storefront/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RowNotFound is returned by LocateRow for an absent id.
const RowNotFound = -1

const DefaultSheet = "Sheet1"

// TokenSource supplies the admin access token.
type TokenSource interface {
	Token() (string, error)
}

// SpreadsheetIDSource supplies the target spreadsheet id; "" means unset.
type SpreadsheetIDSource interface {
	SpreadsheetID(ctx context.Context) (string, error)
}

type Option func(*Client)

func WithSheetName(name string) Option {
	return func(c *Client) {
		if name = strings.TrimSpace(name); name != "" {
			c.sheet = name
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = logger.OrNop(l) }
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

type Client struct {
	backend Backend
	tokens  TokenSource
	ids     SpreadsheetIDSource
	sheet   string
	log     *zap.Logger
	tracer  trace.Tracer
}

func NewClient(backend Backend, tokens TokenSource, ids SpreadsheetIDSource, opts ...Option) *Client {
	c := &Client{
		backend: backend,
		tokens:  tokens,
		ids:     ids,
		sheet:   DefaultSheet,
		log:     zap.NewNop(),
		tracer:  otel.Tracer("github.com/fjod/go_storefront/internal/sheets"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateRemote appends p as a new row. Duplicate ids are not checked.
func (c *Client) CreateRemote(ctx context.Context, p domain.Product) (err error) {
	ctx, span := c.tracer.Start(ctx, "sheets.CreateRemote", trace.WithAttributes(attribute.String("product.id", p.ID)))
	defer func() { endSpan(span, err) }()

	token, spreadsheetID, err := c.credentials(ctx)
	if err != nil {
		return err
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}

	row := sheetrow.Encode(p)
	if err := c.backend.Append(ctx, token, spreadsheetID, sheetrow.Range(c.sheet), [][]string{row}); err != nil {
		return fmt.Errorf("failed to append product %s: %w", p.ID, err)
	}

	logger.FromContext(ctx, c.log).Info("product row appended", zap.String("product_id", p.ID))
	return nil
}

// LocateRow returns the zero-based row index of id, or RowNotFound. Row 0 is
// the header and never matches.
func (c *Client) LocateRow(ctx context.Context, id string) (idx int, err error) {
	ctx, span := c.tracer.Start(ctx, "sheets.LocateRow", trace.WithAttributes(attribute.String("product.id", id)))
	defer func() { endSpan(span, err) }()

	token, spreadsheetID, err := c.credentials(ctx)
	if err != nil {
		return RowNotFound, err
	}
	return c.locate(ctx, token, spreadsheetID, id)
}

func (c *Client) locate(ctx context.Context, token, spreadsheetID, id string) (int, error) {
	rows, err := c.backend.Read(ctx, token, spreadsheetID, sheetrow.IDColumnRange(c.sheet))
	if err != nil {
		return RowNotFound, fmt.Errorf("failed to read id column: %w", err)
	}
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		if row[0] == id {
			return i, nil
		}
	}
	return RowNotFound, nil
}

// UpdateRemote overwrites the row of id with p and returns its index. Locate
// and write are separate calls; a concurrent edit that shifts rows in between
// is not detected.
func (c *Client) UpdateRemote(ctx context.Context, id string, p domain.Product) (idx int, err error) {
	ctx, span := c.tracer.Start(ctx, "sheets.UpdateRemote", trace.WithAttributes(attribute.String("product.id", id)))
	defer func() { endSpan(span, err) }()

	token, spreadsheetID, err := c.credentials(ctx)
	if err != nil {
		return RowNotFound, err
	}
	if strings.TrimSpace(p.ID) == "" {
		p.ID = id
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return RowNotFound, err
	}

	idx, err = c.locate(ctx, token, spreadsheetID, id)
	if err != nil {
		return RowNotFound, err
	}
	if idx == RowNotFound {
		return RowNotFound, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	rng := sheetrow.RowRange(c.sheet, idx)
	if err := c.backend.Write(ctx, token, spreadsheetID, rng, [][]string{sheetrow.Encode(p)}); err != nil {
		return RowNotFound, fmt.Errorf("failed to write %s: %w", rng, err)
	}

	logger.FromContext(ctx, c.log).Info("product row updated",
		zap.String("product_id", id),
		zap.String("range", rng))
	return idx, nil
}

// DeleteRemote is not supported: removing a row shifts every row below it.
func (c *Client) DeleteRemote(ctx context.Context, id string) error {
	_, span := c.tracer.Start(ctx, "sheets.DeleteRemote", trace.WithAttributes(attribute.String("product.id", id)))
	err := fmt.Errorf("%w: delete is not available, remove the row in the spreadsheet directly", ErrUnsupportedOperation)
	endSpan(span, err)
	return err
}

func (c *Client) credentials(ctx context.Context) (string, string, error) {
	token, err := c.tokens.Token()
	if err != nil || token == "" {
		return "", "", ErrAuthRequired
	}
	spreadsheetID, err := c.ids.SpreadsheetID(ctx)
	if err != nil {
		return "", "", err
	}
	if strings.TrimSpace(spreadsheetID) == "" {
		return "", "", ErrNotConfigured
	}
	return token, strings.TrimSpace(spreadsheetID), nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
