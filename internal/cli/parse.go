package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "parse [text]",
		Short: "Extract the physical win and social highlight without logging",
		Long:  "Extract fields from a transcription. Text can be a positional arg or piped via stdin.",
		RunE:  runParse,
	}
	RootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	text, err := readText(args, os.Stdin)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	ex, err := newExtractor()
	if err != nil {
		return fmt.Errorf("configure extractor: %w", err)
	}

	result := ex.Extract(cmd.Context(), text)
	if formatFlag == "text" {
		fmt.Fprintf(cmd.OutOrStdout(), "physical win:     %s\nsocial highlight: %s\n", result.PhysicalWin, result.SocialHighlight)
		return nil
	}
	printJSON(cmd.OutOrStdout(), result)
	return nil
}

// readText joins positional args, falling back to piped stdin.
func readText(args []string, stdin *os.File) (string, error) {
	var content string
	if len(args) > 0 {
		content = strings.Join(args, " ")
	} else if stdin != nil {
		stat, _ := stdin.Stat()
		if stat != nil && (stat.Mode()&os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(stdin)
			if err != nil {
				return "", fmt.Errorf("read stdin: %w", err)
			}
			content = string(b)
		}
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("text is required (positional arg or stdin)")
	}
	return content, nil
}
