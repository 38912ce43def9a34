package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/hemoscan/internal/api"
	"github.com/abhisek/hemoscan/internal/poll"
	"github.com/abhisek/hemoscan/internal/report"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show screening statistics (admin only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")

		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		sess, err := d.session(ctx)
		if err != nil {
			return err
		}
		if !sess.IsAdmin() {
			return errors.New("admin access required")
		}

		out := cmd.OutOrStdout()
		if !watch {
			st, err := d.client.Stats(ctx, sess.Token)
			if err != nil {
				return fmt.Errorf("load stats: %w", err)
			}
			printStats(out, st)
			return nil
		}

		errs := make(chan error, 1)
		h := poll.Every(ctx, d.cfg.StatsInterval, func(ctx context.Context) {
			st, err := d.client.Stats(ctx, sess.Token)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				if api.IsUnauthorized(err) {
					select {
					case errs <- errNotSignedIn:
					default:
					}
					return
				}
				d.logger.Warn("stats refresh failed", zap.Error(err))
				fmt.Fprintf(out, "refresh failed: %s\n", api.Message(err, err.Error()))
				return
			}
			fmt.Fprintf(out, "\n--- %s ---\n", time.Now().Format("15:04:05"))
			printStats(out, st)
		})
		defer h.Cancel()

		select {
		case <-h.Done():
			return nil
		case err := <-errs:
			d.manager.Logout()
			return err
		}
	},
}

func init() {
	statsCmd.Flags().Bool("watch", false, "Refresh on the configured interval until interrupted")
}

func printStats(w io.Writer, st *api.Stats) {
	fmt.Fprintf(w, "Total screenings: %d\n\n", st.TotalScreenings)

	fmt.Fprintln(w, "Risk distribution:")
	for _, l := range []api.RiskLevel{api.RiskLow, api.RiskModerate, api.RiskHigh} {
		fmt.Fprintf(w, "  %-9s %d\n", l, st.RiskDistribution[string(l)])
	}

	fmt.Fprintln(w, "\nAge distribution:")
	for _, bin := range api.AgeBins {
		fmt.Fprintf(w, "  %-9s %d\n", bin, st.AgeDistribution[bin])
	}

	if len(st.RecentPredictions) > 0 {
		fmt.Fprintln(w, "\nRecent predictions:")
		for _, p := range st.RecentPredictions {
			fmt.Fprintf(w, "  %-22s  age %-3d %-7s %-9s %.1f%%\n",
				report.FormatDate(p.Timestamp), p.Age, p.Gender, p.RiskLevel, p.Probability)
		}
	}
}
