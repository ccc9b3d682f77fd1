package cmd

import (
	"fmt"
	"strconv"

	"github.com/DataRockMyWorld/workshopctl/internal/modules/service"
	"github.com/DataRockMyWorld/workshopctl/internal/pkg/currency"
	"github.com/DataRockMyWorld/workshopctl/internal/tui"
	"github.com/spf13/cobra"
)

var (
	invoicePage int
	invoiceJSON bool
	outputDir   string
)

var InvoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "List invoices and download their PDFs",
}

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices",
	Args:  cobra.NoArgs,
	RunE:  runInvoicesList,
}

var invoicesPDFCmd = &cobra.Command{
	Use:   "pdf <id>",
	Short: "Download an invoice as invoice-<id>.pdf",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoicesPDF,
}

func init() {
	invoicesListCmd.Flags().IntVar(&invoicePage, "page", 1, "page number")
	invoicesListCmd.Flags().BoolVar(&invoiceJSON, "json", false, "print raw JSON")
	invoicesPDFCmd.Flags().StringVarP(&outputDir, "dir", "d", ".", "directory to save into")
	InvoicesCmd.AddCommand(invoicesListCmd, invoicesPDFCmd)
}

func runInvoicesList(cmd *cobra.Command, _ []string) error {
	if _, err := signedIn(cmd); err != nil {
		return err
	}
	svc, err := invoke[service.InvoiceService](cmd)
	if err != nil {
		return err
	}
	page, err := svc.List(cmd.Context(), invoicePage)
	if err != nil {
		return fail(cmd, err)
	}
	if invoiceJSON {
		return writeJSON(cmd.OutOrStdout(), page)
	}

	rows := make([][]string, 0, len(page.Results))
	for _, inv := range page.Results {
		paid := "unpaid"
		if inv.Paid {
			paid = "paid"
		}
		rows = append(rows, []string{
			strconv.Itoa(inv.ID),
			strconv.Itoa(inv.ServiceRequest),
			currency.Format(inv.TotalCost),
			paid,
			inv.CreatedAt,
		})
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, tui.Table([]string{"ID", "Job", "Total", "Paid", "Created"}, rows, -1))
	fmt.Fprintln(w, tui.Footer(invoicePage, page.Pages(), page.Count))
	return nil
}

func runInvoicesPDF(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if _, err := signedIn(cmd); err != nil {
		return err
	}
	svc, err := invoke[service.InvoiceService](cmd)
	if err != nil {
		return err
	}
	path, err := svc.DownloadPDF(cmd.Context(), id, outputDir)
	if err != nil {
		return fail(cmd, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), tui.RenderSuccess("Saved "+path))
	return nil
}
