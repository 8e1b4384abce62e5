package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ashureev/winlog/internal/domain"
	"github.com/ashureev/winlog/internal/extract"
	"github.com/ashureev/winlog/internal/session"
	"github.com/spf13/cobra"
)

// cliSessionKey is the session a single submit accumulates under.
const cliSessionKey = "cli"

// accumulator is the part of session.Accumulator the CLI uses.
type accumulator interface {
	Submit(ctx context.Context, key string, fields domain.Fields, finalize bool) (session.Result, error)
}

func init() {
	cmd := &cobra.Command{
		Use:   "submit [text]",
		Short: "Extract fields from a note and append them as a row",
		Long:  "Extract fields from a transcription and append the row. Use --physical/--social to skip extraction.",
		RunE:  runSubmit,
	}
	cmd.Flags().String("physical", "", "Physical achievement; setting this or --social skips extraction")
	cmd.Flags().String("social", "", "Social win")
	RootCmd.AddCommand(cmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	physical, _ := cmd.Flags().GetString("physical")
	social, _ := cmd.Flags().GetString("social")

	var text string
	if physical == "" && social == "" {
		var err error
		if text, err = readText(args, os.Stdin); err != nil {
			return fmt.Errorf("submit: %w", err)
		}
	}

	p, err := newPipeline(cmd.Context())
	if err != nil {
		return fmt.Errorf("configure: %w", err)
	}
	defer p.close()

	var out submitOutcome
	if text == "" {
		out, err = submitFields(cmd.Context(), p.acc, cliSessionKey, domain.Fields{PhysicalAchievement: physical, SocialWin: social})
	} else {
		out, err = submitText(cmd.Context(), p.extractor, p.acc, cliSessionKey, text)
	}
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	writeOutcome(cmd.OutOrStdout(), out)
	return nil
}

// submitOutcome is the printable result of one submission.
type submitOutcome struct {
	Input    string   `json:"input,omitempty"`
	Complete bool     `json:"complete"`
	Row      []string `json:"row,omitempty"`
	Error    string   `json:"error,omitempty"`
}

func submitText(ctx context.Context, ex extract.Extractor, acc accumulator, key, text string) (submitOutcome, error) {
	fields := ex.Extract(ctx, text).Fields()
	out, err := submitFields(ctx, acc, key, fields)
	out.Input = text
	return out, err
}

func submitFields(ctx context.Context, acc accumulator, key string, fields domain.Fields) (submitOutcome, error) {
	res, err := acc.Submit(ctx, key, fields, true)
	if err != nil {
		return submitOutcome{}, err
	}
	out := submitOutcome{Complete: res.Complete}
	if res.Complete {
		out.Row = res.Row.Cells()
	}
	return out, nil
}

func writeOutcome(w io.Writer, out submitOutcome) {
	if formatFlag != "text" {
		printJSON(w, out)
		return
	}
	switch {
	case out.Error != "":
		fmt.Fprintf(w, "error: %s\n", out.Error)
	case out.Complete:
		fmt.Fprintf(w, "logged: %s\n", strings.Join(out.Row, " | "))
	default:
		fmt.Fprintln(w, "incomplete: nothing to log")
	}
}
