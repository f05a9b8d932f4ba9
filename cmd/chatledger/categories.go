package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/chatledger/internal/config"
	"github.com/Veraticus/chatledger/internal/model"
	"github.com/Veraticus/chatledger/internal/storage"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage a user's classification set",
	}
	cmd.PersistentFlags().String("user", "local", "user id")

	cmd.AddCommand(categoriesListCmd())
	cmd.AddCommand(categoriesAddCmd())
	cmd.AddCommand(categoriesDeleteCmd())
	return cmd
}

func categoriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List classifications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStorage(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			userID, _ := cmd.Flags().GetString("user")
			if err := store.EnsureDefaults(cmd.Context(), userID); err != nil {
				return err
			}

			classifications, err := store.GetClassifications(cmd.Context(), userID)
			if err != nil {
				return err
			}

			for _, c := range classifications {
				keywords := strings.Join(c.Keywords, ", ")
				if keywords == "" {
					keywords = "(no keywords)"
				}
				cmd.Printf("%s %-16s %s\n", c.Glyph, c.Name, keywords)
			}
			return nil
		},
	}
}

func categoriesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a classification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			userID, _ := cmd.Flags().GetString("user")
			glyph, _ := cmd.Flags().GetString("glyph")
			keywordsFlag, _ := cmd.Flags().GetString("keywords")

			created, err := store.CreateClassification(cmd.Context(), userID, args[0], glyph, model.ParseKeywords(keywordsFlag))
			if err != nil {
				return fmt.Errorf("failed to add classification: %w", err)
			}
			cmd.Printf("added %s %s\n", created.Glyph, created.Name)
			return nil
		},
	}
	cmd.Flags().String("glyph", "", "display glyph (defaults when empty)")
	cmd.Flags().String("keywords", "none", "comma-separated keywords, or 'none'")
	return cmd
}

func categoriesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a classification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			userID, _ := cmd.Flags().GetString("user")
			if err := store.DeleteClassification(cmd.Context(), userID, args[0]); err != nil {
				return fmt.Errorf("failed to delete classification: %w", err)
			}
			cmd.Printf("deleted %s\n", args[0])
			return nil
		},
	}
}

func openStorage(cmd *cobra.Command) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(config.DataPath(viper.GetString("storage.path")))
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	if err := store.Migrate(cmd.Context()); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return store, nil
}
