package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"crm-reports/internal/features/report"

	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		var registry *report.Registry
		return withApp(cmd.Context(), func(ctx context.Context) error {
			views := registry.Views()
			out := cmd.OutOrStdout()
			if listJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(views)
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODULE\tACTION\tFORMAT\tMAX\tASYNC\tCOLUMNS")
			for _, v := range views {
				module := v.Model
				if module == "" {
					module = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\t%s\n",
					module, v.Action, v.Format, v.MaxRecords, v.Async, strings.Join(v.Columns, ", "))
			}
			return w.Flush()
		}, &registry)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print definitions as JSON")
}
