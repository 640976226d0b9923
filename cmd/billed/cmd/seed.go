package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pigeonworks-llc/billed/internal/fixtures"
	"github.com/pigeonworks-llc/billed/internal/models"
	"github.com/pigeonworks-llc/billed/internal/store"
	"github.com/pigeonworks-llc/billed/pkg/db"
	"github.com/spf13/cobra"
)

// seedMetadataKey records when fixtures were last loaded.
const seedMetadataKey = "last_seed"

var (
	seedFile  string
	seedEmail string
	seedReset bool
)

// seedCmd represents the seed command.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load fixture bills into the local store",
	Long: `Load bills from a YAML fixture file into the local store.

Without --file the built-in fixture set is used. Bills keep their IDs, so
seeding twice overwrites instead of duplicating.

Example:
  billed seed
  billed seed --file testdata/bills.yaml --email employee@test.tld
  billed seed --reset`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "YAML fixture file (default is the built-in set)")
	seedCmd.Flags().StringVar(&seedEmail, "email", "", "reassign every seeded bill to this email")
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "delete existing bills first")
}

func runSeed(cmd *cobra.Command, args []string) error {
	_, paths, err := loadConfig("storage.dataDir")
	if err != nil {
		return err
	}

	var records []models.Bill
	if seedFile != "" {
		records, err = fixtures.Load(seedFile)
	} else {
		records, err = fixtures.Default()
	}
	if err != nil {
		return err
	}

	st, err := store.New(paths.GetStorePath())
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	if seedReset {
		existing, err := st.ListBills(cmd.Context(), "")
		if err != nil {
			return fmt.Errorf("failed to list bills: %w", err)
		}
		for _, b := range existing {
			if err := st.DeleteBill(b.ID); err != nil {
				return fmt.Errorf("failed to delete bill %s: %w", b.ID, err)
			}
		}
		slog.Info("existing bills deleted", "count", len(existing))
	}

	for i := range records {
		if seedEmail != "" {
			records[i].Email = seedEmail
		}
		if err := st.SaveBill(&records[i]); err != nil {
			return err
		}
		slog.Debug("bill seeded", "id", records[i].ID, "date", records[i].Date)
	}

	conn, err := db.Open(paths.GetHistoryPath())
	if err != nil {
		return fmt.Errorf("failed to open visit history: %w", err)
	}
	defer conn.Close()

	if err := db.NewVisitLog(conn).SetMetadata(cmd.Context(), seedMetadataKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	fmt.Printf("Seeded %d bills into %s\n", len(records), paths.GetStorePath())
	return nil
}
