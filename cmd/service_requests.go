package cmd

import (
	"fmt"
	"strconv"

	"github.com/DataRockMyWorld/workshopctl/internal/modules/model"
	"github.com/DataRockMyWorld/workshopctl/internal/modules/service"
	"github.com/DataRockMyWorld/workshopctl/internal/pkg/currency"
	"github.com/DataRockMyWorld/workshopctl/internal/tui"
	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

var (
	srPage      int
	srPartsOnly bool
	srJSON      bool
	srYes       bool
	srData      string
)

var ServiceRequestsCmd = &cobra.Command{
	Use:     "service-requests",
	Aliases: []string{"sr", "jobs"},
	Short:   "List, inspect and complete service requests",
}

var srListCmd = &cobra.Command{
	Use:   "list",
	Short: "List service requests, newest first",
	Args:  cobra.NoArgs,
	RunE:  runSRList,
}

var srGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one service request",
	Args:  cobra.ExactArgs(1),
	RunE:  runSRGet,
}

var srCompleteCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Mark a service request as completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runSRComplete,
}

func init() {
	srListCmd.Flags().IntVar(&srPage, "page", 1, "page number")
	srListCmd.Flags().Int("customer", 0, "only this customer")
	srListCmd.Flags().Int("vehicle", 0, "only this vehicle")
	srListCmd.Flags().Int("mechanic", 0, "only jobs assigned to this mechanic")
	srListCmd.Flags().BoolVar(&srPartsOnly, "parts-only", false, "only walk-in parts sales")
	srListCmd.Flags().BoolVar(&srJSON, "json", false, "print raw JSON")
	srGetCmd.Flags().BoolVar(&srJSON, "json", false, "print raw JSON")
	srCompleteCmd.Flags().BoolVarP(&srYes, "yes", "y", false, "skip the confirmation prompt")
	srCompleteCmd.Flags().StringVar(&srData, "data", "", "JSON body sent with the request")

	ServiceRequestsCmd.AddCommand(srListCmd, srGetCmd, srCompleteCmd)
}

func runSRList(cmd *cobra.Command, _ []string) error {
	if _, err := signedIn(cmd); err != nil {
		return err
	}
	svc, err := invoke[service.ServiceRequestService](cmd)
	if err != nil {
		return err
	}

	page, err := svc.List(cmd.Context(), model.ServiceRequestFilter{
		CustomerID: optionalInt(cmd, "customer"),
		VehicleID:  optionalInt(cmd, "vehicle"),
		MechanicID: optionalInt(cmd, "mechanic"),
		PartsOnly:  srPartsOnly,
		Page:       srPage,
	})
	if err != nil {
		return fail(cmd, err)
	}
	if srJSON {
		return writeJSON(cmd.OutOrStdout(), page)
	}
	if len(page.Results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), tui.RenderInfo("No service requests found"))
		return nil
	}

	rows := make([][]string, 0, len(page.Results))
	for _, sr := range page.Results {
		rows = append(rows, []string{
			strconv.Itoa(sr.ID),
			orDash(sr.DisplayNumber),
			sr.TransactionType,
			sr.Status,
			strconv.Itoa(sr.Site),
			currency.Format(sr.LaborCost),
			sr.CreatedAt,
		})
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, tui.Table([]string{"ID", "Number", "Type", "Status", "Site", "Labour", "Created"}, rows, 3))
	fmt.Fprintln(w, tui.Footer(srPage, page.Pages(), page.Count))
	return nil
}

func runSRGet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if _, err := signedIn(cmd); err != nil {
		return err
	}
	svc, err := invoke[service.ServiceRequestService](cmd)
	if err != nil {
		return err
	}
	sr, err := svc.Get(cmd.Context(), id)
	if err != nil {
		return fail(cmd, err)
	}
	if srJSON {
		return writeJSON(cmd.OutOrStdout(), sr)
	}
	printServiceRequest(cmd, sr)
	return nil
}

func runSRComplete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	var body map[string]any
	if srData != "" {
		if err := sonic.UnmarshalString(srData, &body); err != nil {
			return fmt.Errorf("--data must be a JSON object: %w", err)
		}
	}

	ident, err := signedIn(cmd)
	if err != nil {
		return err
	}
	if !ident.Permissions.CanWrite {
		return fmt.Errorf("%s has read-only access", ident.Email)
	}
	if !srYes {
		ok, err := tui.RunConfirm(fmt.Sprintf("Complete service request %d?", id), false)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderInfo("Nothing changed"))
			return nil
		}
	}

	svc, err := invoke[service.ServiceRequestService](cmd)
	if err != nil {
		return err
	}
	sr, err := svc.Complete(cmd.Context(), id, body)
	if err != nil {
		return fail(cmd, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), tui.RenderSuccess(fmt.Sprintf("%s is now %s", orDash(sr.DisplayNumber), sr.Status)))
	return nil
}

func printServiceRequest(cmd *cobra.Command, sr *model.ServiceRequest) {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, tui.TitleStyle.Render(orDash(sr.DisplayNumber)))
	fmt.Fprintln(w, tui.RenderKV("status", tui.StatusStyle(sr.Status).Render(sr.Status)))
	fmt.Fprintln(w, tui.RenderKV("type", sr.TransactionType))
	fmt.Fprintln(w, tui.RenderKV("customer", sr.Customer))
	fmt.Fprintln(w, tui.RenderKV("vehicle", intOrDash(sr.Vehicle)))
	fmt.Fprintln(w, tui.RenderKV("site", sr.Site))
	fmt.Fprintln(w, tui.RenderKV("mechanic", intOrDash(sr.AssignedMechanic)))
	fmt.Fprintln(w, tui.RenderKV("description", orDash(sr.Description)))
	fmt.Fprintln(w, tui.RenderKV("labour", currency.Format(sr.LaborCost)))
	if sr.TotalCost != "" {
		fmt.Fprintln(w, tui.RenderKV("total", currency.Format(sr.TotalCost)))
	}
	fmt.Fprintln(w, tui.RenderKV("created", sr.CreatedAt))
}
