package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ehr/anesthesia/pkg/clinicalcalc"
)

// calcCmd runs the clinical calculators offline and prints JSON.
func calcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Run a clinical calculation and print the result as JSON",
	}
	cmd.AddCommand(calcBMICmd(), calcWeightCmd(), calcAgeCmd(), calcNPOCmd(), calcAldreteCmd())
	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func calcBMICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bmi",
		Short: "Body-mass index from weight (kg) and height (in)",
		RunE: func(cmd *cobra.Command, args []string) error {
			weight, _ := cmd.Flags().GetFloat64("weight")
			height, _ := cmd.Flags().GetFloat64("height")
			return printJSON(cmd, clinicalcalc.CalculateBMI(weight, height))
		},
	}
	cmd.Flags().Float64("weight", 0, "Weight in kilograms")
	cmd.Flags().Float64("height", 0, "Height in inches")
	return cmd
}

func calcWeightCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weight",
		Short: "Convert a weight between kg and lbs",
		RunE: func(cmd *cobra.Command, args []string) error {
			value, _ := cmd.Flags().GetFloat64("value")
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			for _, u := range []string{from, to} {
				if u != string(clinicalcalc.Kilograms) && u != string(clinicalcalc.Pounds) {
					return fmt.Errorf("unit must be kg or lbs, got %q", u)
				}
			}
			return printJSON(cmd, map[string]interface{}{
				"value": clinicalcalc.ConvertWeight(value, clinicalcalc.WeightUnit(from), clinicalcalc.WeightUnit(to)),
				"unit":  to,
			})
		},
	}
	cmd.Flags().Float64("value", 0, "Weight to convert")
	cmd.Flags().String("from", "kg", "Source unit (kg|lbs)")
	cmd.Flags().String("to", "lbs", "Target unit (kg|lbs)")
	return cmd
}

func calcAgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "age",
		Short: "Age in years and months from a YYYY-MM-DD date of birth",
		RunE: func(cmd *cobra.Command, args []string) error {
			dob, _ := cmd.Flags().GetString("dob")
			on, _ := cmd.Flags().GetString("on")
			now := time.Now()
			if on != "" {
				t, err := time.ParseInLocation(clinicalcalc.DateLayout, on, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --on date: %w", err)
				}
				now = t
			}
			return printJSON(cmd, clinicalcalc.CalculateAge(dob, now))
		},
	}
	cmd.Flags().String("dob", "", "Date of birth (YYYY-MM-DD)")
	cmd.Flags().String("on", "", "Reference date (YYYY-MM-DD), defaults to today")
	return cmd
}

func calcNPOCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "npo",
		Short: "Check fasting hours against the procedure's NPO policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			hours, _ := cmd.Flags().GetFloat64("hours")
			procedure, _ := cmd.Flags().GetString("procedure")
			return printJSON(cmd, clinicalcalc.ValidateNPO(hours, procedure))
		},
	}
	cmd.Flags().Float64("hours", 0, "Hours since last intake")
	cmd.Flags().String("procedure", clinicalcalc.NPOGeneral, "clear_liquids|light_meal|heavy_meal|general")
	return cmd
}

func calcAldreteCmd() *cobra.Command {
	var s clinicalcalc.AldreteScores
	cmd := &cobra.Command{
		Use:   "aldrete",
		Short: "Aldrete recovery score and discharge recommendation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd, clinicalcalc.CalculateAldreteScore(s))
		},
	}
	cmd.Flags().IntVar(&s.Vitals, "vitals", 0, "Vital signs score")
	cmd.Flags().IntVar(&s.Ambulation, "ambulation", 0, "Ambulation score")
	cmd.Flags().IntVar(&s.NV, "nv", 0, "Nausea/vomiting score")
	cmd.Flags().IntVar(&s.Pain, "pain", 0, "Pain score")
	cmd.Flags().IntVar(&s.Consciousness, "consciousness", 0, "Consciousness score")
	cmd.Flags().IntVar(&s.Color, "color", 0, "Color score")
	return cmd
}
