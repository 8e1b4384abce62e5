package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ashureev/winlog/internal/extract"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "Log one row per transcription line",
		Long:  "Read transcriptions one per line from a file (or stdin) and append a row for each. Blank lines and lines starting with # are skipped.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBatch,
	}
	RootCmd.AddCommand(cmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	var in io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open batch file: %w", err)
		}
		defer f.Close()
		in = f
	}

	p, err := newPipeline(cmd.Context())
	if err != nil {
		return fmt.Errorf("configure: %w", err)
	}
	defer p.close()

	failed, err := processBatch(cmd.Context(), in, cmd.OutOrStdout(), p.extractor, p.acc)
	if err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("batch: %d submissions failed", failed)
	}
	return nil
}

// processBatch submits each transcription line in turn and keeps going past
// failures. It returns how many lines failed.
func processBatch(ctx context.Context, in io.Reader, out io.Writer, ex extract.Extractor, acc accumulator) (int, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)

	failed := 0
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return failed, err
		}

		// One session per line so a failed row never leaks into the next one.
		res, err := submitText(ctx, ex, acc, fmt.Sprintf("batch-%d", line), text)
		if err != nil {
			failed++
			slog.Warn("Batch submission failed", "line", line, "error", err)
			res = submitOutcome{Input: text, Error: err.Error()}
		}
		writeOutcome(out, res)
	}
	if err := scanner.Err(); err != nil {
		return failed, fmt.Errorf("read transcriptions: %w", err)
	}
	return failed, nil
}
