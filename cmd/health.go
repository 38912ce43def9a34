package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/hemoscan/internal/api"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the scoring service status",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		h, err := d.client.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s: %s", d.cfg.API.BaseURL, api.Message(err, err.Error()))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (model loaded: %t)\n", d.cfg.API.BaseURL, h.Status, h.ModelLoaded)
		if !h.ModelLoaded {
			return fmt.Errorf("model not loaded")
		}
		return nil
	},
}
