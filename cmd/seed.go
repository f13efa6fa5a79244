package main

import (
	"context"
	"fmt"
	"os"

	"firstbites/config"
	"firstbites/models"
	"firstbites/services"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func seedCommand(cfg *config.Config) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the food catalog into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := config.NewLogger(*cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := config.InitDB(*cfg)
			if err != nil {
				return err
			}

			n, err := seedCatalog(cmd.Context(), db, file)
			if err != nil {
				return err
			}
			log.Infow("catalog seeded", "foods", n, "source", file)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML catalog to load instead of the built-in one")
	return cmd
}

// seedCatalog upserts the built-in catalog, or the one in file when given.
func seedCatalog(ctx context.Context, db *gorm.DB, file string) (int, error) {
	var (
		foods []models.Food
		err   error
	)
	if file == "" {
		foods, err = services.DefaultCatalog()
	} else {
		f, openErr := os.Open(file)
		if openErr != nil {
			return 0, openErr
		}
		defer f.Close()
		foods, err = services.LoadCatalog(f)
	}
	if err != nil {
		return 0, fmt.Errorf("read catalog: %w", err)
	}

	if err := services.NewGormStore(db).UpsertFoods(ctx, foods); err != nil {
		return 0, err
	}
	return len(foods), nil
}
