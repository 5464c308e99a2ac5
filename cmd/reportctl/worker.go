package main

import (
	"errors"

	"crm-reports/internal/bootstrap"
	"crm-reports/internal/features/report"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var errInlineBroker = errors.New("worker needs REPORTS_BROKER=redis")

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume queued report tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := fx.New(
			bootstrap.Core,
			fx.Invoke(
				requireBroker,
				bootstrap.RunWorker,
			),
		)
		if err := app.Err(); err != nil {
			return err
		}
		app.Run()
		return nil
	},
}

func requireBroker(queue report.Queue) error {
	if _, ok := queue.(report.TaskSource); !ok {
		return errInlineBroker
	}
	return nil
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
