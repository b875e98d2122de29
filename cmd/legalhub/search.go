package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	searchTopK      int
	searchThreshold float64
	resetYes        bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the indexed documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		defer app.Close()

		query := strings.Join(args, " ")
		results, err := app.Service.RetrieveDocuments(cmd.Context(), query, searchTopK, float32(searchThreshold))
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Println("No matching documents.")
			return nil
		}

		for i, r := range results {
			source := r.Entry.Metadata["source"]
			if source == "" {
				source = "unknown"
			}
			fmt.Printf("%d. [%.2f] %s (%s)\n", i+1, r.Score, r.Entry.ID, source)
			fmt.Printf("   %s\n", excerpt(r.Entry.Content, 200))
		}
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all indexed documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		defer app.Close()

		count := app.Service.Store().Count()
		if !resetYes {
			fmt.Printf("This deletes all %d indexed chunks. Continue? [y/N] ", count)
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		if err := app.Service.Store().Reset(); err != nil {
			return err
		}
		if err := os.Remove(app.Config.SyncStatePath()); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove sync state: %w", err)
		}
		fmt.Printf("Removed %d chunks.\n", count)
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchTopK, "top-k", 0, "number of results (default from config)")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "minimum relevance score (default from config)")
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")
}

func excerpt(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
