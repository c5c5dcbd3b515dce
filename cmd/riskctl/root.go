package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/climate-risk-engine/internal/config"
	"github.com/couchcryptid/climate-risk-engine/internal/model"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
	"github.com/couchcryptid/climate-risk-engine/internal/risk"
)

// modelFlags are shared by every command that trains a model.
type modelFlags struct {
	samples    int
	seed       uint64
	iterations int
	logLevel   string
}

func (f *modelFlags) register(cmd *cobra.Command) {
	def := model.DefaultConfig()
	cmd.Flags().IntVar(&f.samples, "samples", def.Samples, "synthetic training samples")
	cmd.Flags().Uint64Var(&f.seed, "seed", def.Seed, "training data seed")
	cmd.Flags().IntVar(&f.iterations, "iterations", def.MaxIterations, "classifier optimizer iterations")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
}

// service trains a fresh model and wraps it in a risk service. Logs go to
// stderr so stdout stays machine-readable.
func (f *modelFlags) service(cmd *cobra.Command) (*risk.Service, error) {
	logger := observability.NewLoggerTo(cmd.ErrOrStderr(), &config.Config{LogLevel: f.logLevel, LogFormat: "text"}).
		With("cmd", cmd.Name())

	cfg := model.DefaultConfig()
	cfg.Samples = f.samples
	cfg.Seed = f.seed
	cfg.MaxIterations = f.iterations

	svc := risk.NewService(model.NewRegistry(cfg, logger), observability.NewMetricsForTesting(), logger)
	if _, err := svc.Train(); err != nil {
		return nil, err
	}
	return svc, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "riskctl",
		Short:         "Climate-driven disease risk model tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newTrainCmd(), newPredictCmd(), newSynthCmd())
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
