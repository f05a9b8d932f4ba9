package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/chatledger/internal/model"
)

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the current month's spending from the local expense log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStorage(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			userID, _ := cmd.Flags().GetString("user")
			now := time.Now()
			monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

			expenses, err := store.GetExpenses(cmd.Context(), userID, monthStart)
			if err != nil {
				return err
			}
			if len(expenses) == 0 {
				cmd.Printf("No expenses found for %s\n", now.Format("January 2006"))
				return nil
			}

			classifications, err := store.GetClassifications(cmd.Context(), userID)
			if err != nil {
				return err
			}
			glyphs := make(map[string]string, len(classifications))
			for _, c := range classifications {
				glyphs[model.NormalizeClassificationName(c.Name)] = c.Glyph
			}

			summary := model.SummarizeExpenses(expenses)
			cmd.Printf("%s Summary\n\n", now.Format("January 2006"))
			cmd.Printf("Total spent:  ₹%.2f\n", summary.Total)
			cmd.Printf("Transactions: %d\n\n", summary.Count)
			cmd.Println("Top categories:")
			for _, ct := range summary.TopCategories(5) {
				glyph := glyphs[ct.Category]
				if glyph == "" {
					glyph = model.DefaultGlyph
				}
				cmd.Printf("%s %-16s ₹%.0f (%.1f%%)\n", glyph, ct.Category, ct.Total, summary.Percentage(ct.Total))
			}
			return nil
		},
	}
	cmd.Flags().String("user", "local", "user id")
	return cmd
}
