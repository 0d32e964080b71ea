// Package sheets reads the leaderboard tables from a Google spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/errors"
)

// UNFORMATTED_VALUE returns numbers as JSON numbers instead of display strings.
const valueRenderOption = "UNFORMATTED_VALUE"

// Config identifies the spreadsheet and bounds how hard we hit it.
type Config struct {
	DocumentKey     string
	IndividualTable string
	TeamTable       string
	ReadsPerMinute  int
	FetchTimeout    time.Duration
}

// Tables holds one consistent read of both leaderboard tables.
type Tables struct {
	Individual []Record
	Team       []Record
	FetchedAt  time.Time
}

// Client provides read-only access to the leaderboard spreadsheet.
// A single Client is shared by every viewer session; its limiter bounds the
// aggregate read rate against the Sheets quota.
type Client struct {
	values      *sheets.SpreadsheetsValuesService
	cfg         Config
	rateLimiter *rate.Limiter
	logger      *slog.Logger
	now         func() time.Time
}

// NewClient creates a Sheets client. opts carry credentials (or, in tests, an
// endpoint and HTTP client).
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger, opts ...option.ClientOption) (*Client, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.SourceUnavailable("create sheets service", err)
	}

	perMinute := cfg.ReadsPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}
	burst := max(1, perMinute/10)

	return &Client{
		values:      svc.Spreadsheets.Values,
		cfg:         cfg,
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst),
		logger:      logger,
		now:         time.Now,
	}, nil
}

// FetchTables reads both tables in one batch request. Either both tables come
// back or the call fails with a source-unavailable error.
func (c *Client) FetchTables(ctx context.Context) (*Tables, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	ranges := []string{quoteRange(c.cfg.IndividualTable), quoteRange(c.cfg.TeamTable)}

	resp, err := c.values.BatchGet(c.cfg.DocumentKey).
		Ranges(ranges...).
		ValueRenderOption(valueRenderOption).
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.SourceUnavailable("read leaderboard tables", err)
	}

	if len(resp.ValueRanges) != len(ranges) {
		return nil, errors.SourceUnavailable(
			fmt.Sprintf("expected %d tables, got %d", len(ranges), len(resp.ValueRanges)), nil)
	}

	tables := &Tables{
		Individual: buildRecords(resp.ValueRanges[0].Values),
		Team:       buildRecords(resp.ValueRanges[1].Values),
		FetchedAt:  c.now(),
	}

	c.logger.Debug("fetched leaderboard tables",
		"individual_rows", len(tables.Individual),
		"team_rows", len(tables.Team),
		"duration", time.Since(start),
	)

	return tables, nil
}

// FetchPlayerRecord reads the round table and returns the first row whose
// Player column equals player exactly. found is false when nobody matches.
func (c *Client) FetchPlayerRecord(ctx context.Context, player string) (record Record, found bool, err error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.wait(ctx); err != nil {
		return nil, false, err
	}

	resp, err := c.values.Get(c.cfg.DocumentKey, quoteRange(c.cfg.IndividualTable)).
		ValueRenderOption(valueRenderOption).
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, false, errors.SourceUnavailable("read round table", err)
	}

	for _, rec := range buildRecords(resp.Values) {
		if CellString(rec[ColumnPlayer]) == player {
			return rec, true, nil
		}
	}

	c.logger.Debug("player not in round table", "player", player)
	return nil, false, nil
}

// DocumentKey returns the spreadsheet key this client reads.
func (c *Client) DocumentKey() string {
	return c.cfg.DocumentKey
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.FetchTimeout > 0 {
		return context.WithTimeout(ctx, c.cfg.FetchTimeout)
	}
	return context.WithCancel(ctx)
}

// wait blocks until the rate limiter allows a request.
func (c *Client) wait(ctx context.Context) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return errors.SourceUnavailable("rate limit", err)
	}
	return nil
}

// quoteRange turns a worksheet title into an A1 range covering the whole sheet.
func quoteRange(table string) string {
	return "'" + strings.ReplaceAll(table, "'", "''") + "'"
}
