package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yamdb/yamdb-server/internal/importer"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorGray  = "\033[37m"
)

// errLoadFailed is returned when at least one file could not be loaded.
var errLoadFailed = errors.New("some files failed to load")

func newLoadCSVCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "loadcsv",
		Short: "Replace catalog tables from CSV exports",
		Long: `Load CSV exports into the database. Files are read in dependency order and
each one replaces its table in a single transaction:

  category.csv, genre.csv, users.csv, titles.csv,
  genre_title.csv, review.csv, comments.csv

Missing files are skipped. A failed file is reported and the rest are still loaded.

Examples:
  yamdbctl loadcsv --dir static/data
  yamdbctl loadcsv --dir ./data --db /var/lib/yamdb/yamdb.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, log, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Loading data from %s:\n", dir)

			failed := false
			for _, r := range importer.New(db, log).Load(cmd.Context(), dir) {
				switch r.Status {
				case importer.StatusOK:
					fmt.Fprintf(out, "%s - %sOK%s (%d rows)\n", r.File, colorGreen, colorReset, r.Rows)
				case importer.StatusMissing:
					fmt.Fprintf(out, "%s - %snot found%s\n", r.File, colorGray, colorReset)
				default:
					failed = true
					fmt.Fprintf(out, "%s - %sFAIL%s: %v\n", r.File, colorRed, colorReset, r.Err)
				}
			}
			if failed {
				return errLoadFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "static/data", "Directory containing the CSV files")
	return cmd
}
