package main

import (
	"github.com/spf13/cobra"
)

func newTrainCmd() *cobra.Command {
	var flags modelFlags
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the model and print its held-out metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := flags.service(cmd)
			if err != nil {
				return err
			}
			info, err := svc.ModelInfo()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), info)
		},
	}
	flags.register(cmd)
	return cmd
}
