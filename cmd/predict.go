package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/hemoscan/internal/api"
	"github.com/abhisek/hemoscan/internal/handoff"
	"github.com/abhisek/hemoscan/internal/prediction"
	"github.com/abhisek/hemoscan/internal/report"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Submit a questionnaire and print the risk assessment",
	Example: `  hemoscan predict --age 34 --gender Female --hemoglobin 11.2 --diet poor --symptom fatigue --symptom dizziness
  hemoscan predict --age 52 --gender Male --rural --diet moderate --report`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		form := prediction.Form{}
		form.Age, _ = flags.GetString("age")
		form.Gender, _ = flags.GetString("gender")
		form.Hemoglobin, _ = flags.GetString("hemoglobin")
		form.Diet, _ = flags.GetString("diet")
		form.Symptoms, _ = flags.GetStringSlice("symptom")
		form.RuralMode, _ = flags.GetBool("rural")
		save, _ := flags.GetBool("report")

		// Fail fast on bad input before touching the network.
		if errs := prediction.Validate(form); len(errs) > 0 {
			return errs
		}

		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		if _, err := d.session(ctx); err != nil {
			return err
		}

		slot := &handoff.Slot{}
		wf := prediction.NewWorkflow(d.client, d.manager, slot, d.logger)
		out := wf.Submit(ctx, form)
		switch {
		case len(out.Fields) > 0:
			return out.Fields
		case out.Err != nil:
			return out.Err
		}

		res, ok := slot.Take()
		if !ok {
			return errors.New("prediction finished without a result")
		}
		now := time.Now()
		in := report.FromHandoff(res)
		fmt.Fprint(cmd.OutOrStdout(), report.Generate(in, now))

		if save {
			path, err := report.Save(d.cfg.ReportDir, in, now)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nReport saved to %s\n", path)
		}
		return nil
	},
}

func init() {
	f := predictCmd.Flags()
	f.String("age", "", "Age in years (18-100)")
	f.String("gender", "", "Male or Female")
	f.String("hemoglobin", "", "Hemoglobin in g/dL (5-18); omit with --rural")
	f.String("diet", "", "Diet quality: poor, moderate or good")
	f.StringSlice("symptom", nil, "Symptom, repeatable: "+strings.Join(symptomNames(), ", "))
	f.Bool("rural", false, "No hemoglobin measurement available")
	f.Bool("report", false, "Also save the report to the report directory")
}

func symptomNames() []string {
	names := make([]string, 0, len(api.Symptoms))
	for _, s := range api.Symptoms {
		names = append(names, string(s))
	}
	return names
}
