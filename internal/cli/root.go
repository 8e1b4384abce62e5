// Package cli implements the winlog CLI commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ashureev/winlog/internal/config"
	"github.com/ashureev/winlog/internal/extract"
	"github.com/ashureev/winlog/internal/session"
	"github.com/ashureev/winlog/internal/sheets"
	"github.com/ashureev/winlog/internal/store"
	"github.com/spf13/cobra"
)

var (
	dbPath     string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "winlog",
	Short: "Log daily physical and social wins to a Google Sheet",
	Long:  "Extract the physical win and social highlight from a note and append them, timestamped, to a Google Sheet.",

	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Journal database path (default: $JOURNAL_DB_PATH)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return os.Getenv("JOURNAL_DB_PATH")
}

func openStore() (*store.SQLiteStore, error) {
	path := getDBPath()
	if path == "" {
		return nil, fmt.Errorf("no journal database: pass --db or set JOURNAL_DB_PATH")
	}
	return store.NewSQLite(path)
}

func newExtractor() (extract.Extractor, error) {
	cfg, err := config.LoadExtractOnly()
	if err != nil {
		return nil, err
	}
	return extract.New(cfg.Extract)
}

// pipeline bundles what the writing commands need. close releases the journal.
type pipeline struct {
	extractor extract.Extractor
	acc       *session.Accumulator
	close     func()
}

func newPipeline(ctx context.Context) (*pipeline, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	ex, err := extract.New(cfg.Extract)
	if err != nil {
		return nil, err
	}
	appender, err := sheets.NewAppender(ctx, cfg.Sheets)
	if err != nil {
		return nil, err
	}

	var sink session.Sink = appender
	closeFn := func() {}
	if path := getDBPath(); path != "" {
		s, err := store.NewSQLite(path)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		sink = store.NewJournalSink(appender, s)
		closeFn = func() { _ = s.Close() }
	}

	loc := cfg.Location
	acc := session.NewAccumulator(session.NewMemoryStore(), sink, func() time.Time { return time.Now().In(loc) })
	return &pipeline{extractor: ex, acc: acc, close: closeFn}, nil
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
