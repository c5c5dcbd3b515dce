package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

func newPredictCmd() *cobra.Command {
	var flags modelFlags
	cmd := &cobra.Command{
		Use:   "predict [file]",
		Short: "Score readings from a JSON file (or stdin) and print their reports",
		Long: `Reads one ClimateReading object or an array of them from the named file,
or from stdin when no file (or "-") is given, trains a model and prints one
risk report per reading.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			readings, err := decodeReadings(in)
			if err != nil {
				return err
			}

			svc, err := flags.service(cmd)
			if err != nil {
				return err
			}
			reports := make([]domain.RiskReport, 0, len(readings))
			for i, r := range readings {
				report, err := svc.Assess(r)
				if err != nil {
					return fmt.Errorf("reading %d: %w", i, err)
				}
				reports = append(reports, report)
			}
			return writeJSON(cmd.OutOrStdout(), reports)
		},
	}
	flags.register(cmd)
	return cmd
}

// decodeReadings accepts a single JSON object or an array of them.
func decodeReadings(r io.Reader) ([]domain.ClimateReading, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var readings []domain.ClimateReading
		if err := json.Unmarshal(data, &readings); err != nil {
			return nil, fmt.Errorf("decode readings: %w", err)
		}
		return readings, nil
	}
	var reading domain.ClimateReading
	if err := json.Unmarshal(data, &reading); err != nil {
		return nil, fmt.Errorf("decode reading: %w", err)
	}
	return []domain.ClimateReading{reading}, nil
}
