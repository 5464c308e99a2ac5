package main

import (
	"context"
	"fmt"
	"time"

	"crm-reports/internal/features/report"

	"github.com/spf13/cobra"
)

var cleanupOlderThan time.Duration

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete saved reports older than the given age",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cleanupOlderThan <= 0 {
			return fmt.Errorf("--older-than must be positive")
		}
		var service report.ReportService
		return withApp(cmd.Context(), func(ctx context.Context) error {
			removed, err := service.Cleanup(ctx, time.Now().Add(-cleanupOlderThan))
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d saved reports\n", removed)
			return err
		}, &service)
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().DurationVar(&cleanupOlderThan, "older-than", 30*24*time.Hour, "minimum age of reports to delete")
}
