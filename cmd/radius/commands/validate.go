package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Jayden-Richmond/Radius-Finance/internal/cache"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/dataloader"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/fetch"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/reference"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/storage"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the configured datasets fetch and parse cleanly",
	Long: `Fetches the primary, reference and users datasets with the same
pipeline the server uses and reports a PASS/WARN/FAIL line per check.

Problems with the primary dataset fail validation. Problems with the
reference or users datasets only warn: the dashboard degrades without
them but still serves.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := cache.New(cfg.CacheConfig())
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer store.Close()

	files := storage.New(cfg.DataDirectory)
	fetcher := fetch.New(files, store, cfg.FetchConfig(), logger)
	loader := dataloader.New(fetcher, cfg.LoaderConfig(), logger)

	var passed, warned, failed int

	// Primary dataset: everything else rides on it.
	primaryText, err := fetcher.Fetch(ctx, cfg.Datasets.PrimaryURL)
	if err != nil {
		fmt.Printf("FAIL primary: %v\n", err)
		failed++
	} else {
		fmt.Printf("PASS primary: fetched %d bytes from %s\n", len(primaryText), cfg.Datasets.PrimaryURL)
		passed++

		table, err := dataloader.ParseTable(primaryText)
		if err != nil {
			fmt.Printf("FAIL primary: %v\n", err)
			failed++
		} else {
			fmt.Printf("PASS primary: %d columns, %d rows\n", len(table.Headers), len(table.Rows))
			passed++

			set, err := loader.LoadTransactions(ctx)
			if err != nil {
				fmt.Printf("FAIL primary: %v\n", err)
				failed++
			} else if set.Len() == 0 {
				fmt.Println("FAIL primary: no rows with a parseable date and amount")
				failed++
			} else {
				fmt.Printf("PASS primary: %d usable transactions, %d entities, %d categories\n",
					set.Len(), len(set.Entities()), len(set.Categories()))
				passed++

				if skipped := len(table.Rows) - set.Len(); skipped > 0 {
					fmt.Printf("WARN primary: %d rows skipped (unparseable date or amount)\n", skipped)
					warned++
				}
			}
		}
	}

	// Reference dataset: optional, degrades the dashboard when broken.
	if cfg.Datasets.ReferenceURL == "" {
		fmt.Println("SKIP reference: not configured")
	} else if text, err := fetcher.Fetch(ctx, cfg.Datasets.ReferenceURL); err != nil {
		fmt.Printf("WARN reference: %v (dashboard serves without reference lines)\n", err)
		warned++
	} else if table, err := reference.Load(text); err != nil {
		fmt.Printf("WARN reference: %v (dashboard serves without reference lines)\n", err)
		warned++
	} else if len(table.Regions()) == 0 {
		fmt.Println("WARN reference: no \"<Region> Mean (Weekly $)\" columns found")
		warned++
	} else {
		fmt.Printf("PASS reference: %d items, regions: %s\n",
			table.Len(), strings.Join(table.Regions(), ", "))
		passed++
	}

	// Users dataset: optional, demo credentials still work without it.
	if cfg.Datasets.UsersURL == "" {
		fmt.Println("SKIP users: not configured")
	} else if users, err := loader.LoadUsers(ctx); err != nil {
		fmt.Printf("WARN users: %v (only the demo credentials will work)\n", err)
		warned++
	} else {
		fmt.Printf("PASS users: %d accounts\n", len(users))
		passed++
	}

	fmt.Printf("\nResults: %d passed, %d warnings, %d failed\n", passed, warned, failed)
	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}
