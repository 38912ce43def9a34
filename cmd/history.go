package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/hemoscan/internal/api"
	"github.com/abhisek/hemoscan/internal/report"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past assessments",
	RunE: func(cmd *cobra.Command, args []string) error {
		reportID, _ := cmd.Flags().GetString("report")

		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		sess, err := d.session(ctx)
		if err != nil {
			return err
		}

		records, err := d.client.History(ctx, sess.Token)
		if err != nil {
			if api.IsUnauthorized(err) {
				d.manager.Logout()
				return errNotSignedIn
			}
			return fmt.Errorf("load history: %w", err)
		}

		if reportID != "" {
			rec, err := findRecord(records, reportID)
			if err != nil {
				return err
			}
			path, err := report.Save(d.cfg.ReportDir, report.FromRecord(rec), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report saved to %s\n", path)
			return nil
		}

		printHistory(cmd.OutOrStdout(), records)
		return nil
	},
}

func init() {
	historyCmd.Flags().String("report", "", "Save the report for the record with this id (or unique id prefix)")
}

// findRecord matches id exactly or as a unique prefix.
func findRecord(records []api.HistoricalRecord, id string) (api.HistoricalRecord, error) {
	var matches []api.HistoricalRecord
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
		if strings.HasPrefix(r.ID, id) {
			matches = append(matches, r)
		}
	}
	switch len(matches) {
	case 0:
		return api.HistoricalRecord{}, fmt.Errorf("no record with id %q", id)
	case 1:
		return matches[0], nil
	}
	return api.HistoricalRecord{}, fmt.Errorf("id prefix %q matches %d records", id, len(matches))
}

func printHistory(w io.Writer, records []api.HistoricalRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No assessments yet.")
		return
	}
	fmt.Fprintf(w, "%-10s  %-22s  %-8s  %7s  %s\n", "ID", "DATE", "RISK", "SCORE", "PATIENT")
	for _, r := range records {
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Fprintf(w, "%-10s  %-22s  %-8s  %6.1f%%  %d, %s\n",
			id, report.FormatDate(r.Timestamp), r.RiskLevel, r.RiskScore, r.Age, r.Gender)
	}
}
