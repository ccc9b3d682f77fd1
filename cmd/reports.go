package cmd

import (
	"fmt"

	"github.com/DataRockMyWorld/workshopctl/internal/modules/service"
	"github.com/DataRockMyWorld/workshopctl/internal/tui"
	"github.com/spf13/cobra"
)

var reportPeriod int

// exportResources are the collections dashboard/export/ accepts.
var exportResources = []tui.SelectOption{
	{Label: "Service requests", Value: "service_requests"},
	{Label: "Customers", Value: "customers"},
	{Label: "Invoices", Value: "invoices"},
}

var ReportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Period reports and CSV exports",
}

var reportsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the report for a period as JSON",
	Args:  cobra.NoArgs,
	RunE:  runReportsShow,
}

var reportsCSVCmd = &cobra.Command{
	Use:   "csv [resource]",
	Short: "Export a collection as <resource>.csv",
	Long: `Export a collection as CSV. Valid resources are service_requests, customers
and invoices; you are asked to pick one when it is omitted.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"service_requests", "customers", "invoices"},
	RunE:      runReportsCSV,
}

func init() {
	reportsShowCmd.Flags().IntVar(&reportPeriod, "period", 30, "period in days")
	reportsCSVCmd.Flags().StringVarP(&outputDir, "dir", "d", ".", "directory to save into")
	ReportsCmd.AddCommand(reportsShowCmd, reportsCSVCmd)
}

func runReportsShow(cmd *cobra.Command, _ []string) error {
	if _, err := signedIn(cmd); err != nil {
		return err
	}
	svc, err := invoke[service.ReportService](cmd)
	if err != nil {
		return err
	}
	report, err := svc.Get(cmd.Context(), reportPeriod)
	if err != nil {
		return fail(cmd, err)
	}
	return writeJSON(cmd.OutOrStdout(), report)
}

func runReportsCSV(cmd *cobra.Command, args []string) error {
	if _, err := signedIn(cmd); err != nil {
		return err
	}

	var resource string
	if len(args) == 1 {
		resource = args[0]
	} else {
		var err error
		if resource, err = tui.RunSelect("Export which collection?", exportResources); err != nil {
			return err
		}
	}

	svc, err := invoke[service.ReportService](cmd)
	if err != nil {
		return err
	}
	path, err := svc.ExportCSV(cmd.Context(), resource, outputDir)
	if err != nil {
		return fail(cmd, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), tui.RenderSuccess("Saved "+path))
	return nil
}
