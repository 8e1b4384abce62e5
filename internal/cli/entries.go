package cli

import (
	"fmt"
	"io"

	"github.com/ashureev/winlog/internal/domain"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List rows recorded in the local journal",
		RunE:  runEntries,
	}
	cmd.Flags().IntP("limit", "l", 20, "Maximum number of entries")
	RootCmd.AddCommand(cmd)
}

func runEntries(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	entries, err := s.ListEntries(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}
	writeEntries(cmd.OutOrStdout(), entries)
	return nil
}

func writeEntries(w io.Writer, entries []*domain.Entry) {
	if formatFlag != "text" {
		if entries == nil {
			entries = []*domain.Entry{}
		}
		printJSON(w, entries)
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "no entries")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %-30s  %-30s  [%s]\n",
			e.CommittedAt.Format(domain.TimestampLayout), e.PhysicalAchievement, e.SocialWin, e.SessionID)
	}
}
