package main

import (
	"context"
	"fmt"

	"crm-reports/internal/features/admin"
	"crm-reports/internal/features/record"
	"crm-reports/internal/features/report"

	"github.com/spf13/cobra"
)

var (
	runModule string
	runReport string
	runIDs    []string
	runUser   string
	runTenant string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a report for a selection of records",
	Example: `  reportctl run --module leads --report lead-owners --ids 65f0c2,65f0c3
  reportctl run --module deals --report pipeline --user 65a1b0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			registry *report.Registry
			selector record.Selector
			service  report.ReportService
		)
		return withApp(cmd.Context(), func(ctx context.Context) error {
			def, err := registry.Resolve(runModule, runReport)
			if err != nil {
				return err
			}
			sel, err := selector.Select(ctx, record.Query{Module: runModule, TenantID: runTenant, IDs: runIDs})
			if err != nil {
				return err
			}

			outcome, err := service.Invoke(ctx, def, admin.ActionRequest{
				UserID:    runUser,
				TenantID:  runTenant,
				Module:    runModule,
				Selection: sel,
			})
			if err != nil {
				return err
			}
			return printOutcome(cmd, def, outcome)
		}, &registry, &selector, &service)
	},
}

func printOutcome(cmd *cobra.Command, def *report.Definition, outcome *report.Outcome) error {
	out := cmd.OutOrStdout()
	switch {
	case outcome.Reason == report.ReasonLimit:
		return fmt.Errorf("selection too large: report %q is limited to %d records", def.Name, def.MaxRecords)
	case outcome.Reason == report.ReasonFailed:
		return fmt.Errorf("report %q failed, see logs", def.Name)
	case outcome.Queued:
		fmt.Fprintf(out, "queued task %s\n", outcome.TaskID)
	case outcome.Saved != nil:
		fmt.Fprintf(out, "saved %s (%d rows, %d skipped)\n%s\n",
			outcome.Saved.FileName, outcome.Saved.RowCount, outcome.Saved.SkippedRows, outcome.Saved.URL)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runModule, "module", "", "module the records belong to")
	runCmd.Flags().StringVar(&runReport, "report", "", "report name or action name")
	runCmd.Flags().StringSliceVar(&runIDs, "ids", nil, "record ids, all records when empty")
	runCmd.Flags().StringVar(&runUser, "user", "", "user the report is run for")
	runCmd.Flags().StringVar(&runTenant, "tenant", "", "tenant id")
	_ = runCmd.MarkFlagRequired("module")
	_ = runCmd.MarkFlagRequired("report")
}
