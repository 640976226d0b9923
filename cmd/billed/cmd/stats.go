package cmd

import (
	"fmt"
	"log/slog"

	"github.com/pigeonworks-llc/billed/pkg/db"
	"github.com/spf13/cobra"
)

var statsRecent int

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display bills page visit statistics",
	Long: `Display statistics about bills page loads.

Shows:
- Total number of page loads
- Loads that rendered the list and loads that failed to fetch
- Rows rendered with a raw fallback value
- Last visit and last seed timestamps

Example:
  billed stats --recent 10`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsRecent, "recent", 0, "also list the N most recent visits")
}

func runStats(cmd *cobra.Command, args []string) error {
	_, paths, err := loadConfig("storage.dataDir")
	if err != nil {
		return err
	}

	dbPath := paths.GetHistoryPath()
	if !paths.FileExists(dbPath) {
		fmt.Println("No visit history yet. Run 'billed serve' or 'billed seed' first.")
		return nil
	}
	slog.Debug("Opening database", "path", dbPath)

	conn, err := db.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer conn.Close()

	visits := db.NewVisitLog(conn)

	stats, err := visits.GetStats(cmd.Context())
	if err != nil {
		return err
	}
	lastSeed, err := visits.GetMetadata(cmd.Context(), seedMetadataKey)
	if err != nil {
		return err
	}

	fmt.Println("\n=== Visit Statistics ===")
	fmt.Printf("Total page loads:      %d\n", stats.TotalVisits)
	fmt.Printf("Loaded:                %d\n", stats.Loaded)
	fmt.Printf("Fetch failed:          %d\n", stats.FetchFailed)
	fmt.Printf("Raw fallback rows:     %d\n", stats.FormatErrors)

	if stats.LastVisit.Valid {
		fmt.Printf("Last visit:            %s\n", stats.LastVisit.String)
	} else {
		fmt.Printf("Last visit:            (never)\n")
	}
	if lastSeed != "" {
		fmt.Printf("Last seed:             %s\n", lastSeed)
	} else {
		fmt.Printf("Last seed:             (never)\n")
	}

	if statsRecent > 0 {
		recent, err := visits.Recent(cmd.Context(), statsRecent)
		if err != nil {
			return err
		}
		fmt.Println("\n=== Recent Visits ===")
		for _, v := range recent {
			line := fmt.Sprintf("%s  %-8s %-24s %-12s rows=%d", v.VisitedAt.Format("2006-01-02 15:04:05"), v.UserType, v.Email, v.Outcome, v.RowCount)
			if v.ErrorMessage != "" {
				line += "  " + v.ErrorMessage
			}
			fmt.Println(line)
		}
	}

	fmt.Println()
	return nil
}
