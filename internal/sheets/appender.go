// Package sheets appends committed rows to a Google Sheet.
package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ashureev/winlog/internal/config"
	"github.com/ashureev/winlog/internal/domain"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Appender writes rows to one sheet of one spreadsheet.
type Appender struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
	timeout       time.Duration
}

// NewAppender authenticates with the service account in cfg.CredentialsFile.
func NewAppender(ctx context.Context, cfg config.SheetsConfig) (*Appender, error) {
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}

	return NewAppenderWithOptions(ctx, cfg, option.WithCredentials(creds))
}

// NewAppenderWithOptions builds an Appender from explicit client options.
func NewAppenderWithOptions(ctx context.Context, cfg config.SheetsConfig, opts ...option.ClientOption) (*Appender, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	name := cfg.SheetName
	if name == "" {
		name = "Sheet1"
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Appender{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     name,
		timeout:       cfg.Timeout,
	}, nil
}

// Append adds row as a new line at the end of the sheet.
func (a *Appender) Append(ctx context.Context, row domain.Row) (domain.AppendResult, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	cells := row.Cells()
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}

	resp, err := a.svc.Spreadsheets.Values.
		Append(a.spreadsheetID, a.sheetName, &sheets.ValueRange{Values: [][]interface{}{values}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return domain.AppendResult{}, fmt.Errorf("append row to sheet %q: %w", a.sheetName, err)
	}

	var updated string
	if resp.Updates != nil {
		updated = resp.Updates.UpdatedRange
	}
	slog.Info("Row appended", "sheet", a.sheetName, "updated_range", updated)

	return domain.AppendResult{UpdatedRange: updated}, nil
}
