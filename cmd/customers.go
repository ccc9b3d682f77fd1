package cmd

import (
	"fmt"
	"strconv"

	"github.com/DataRockMyWorld/workshopctl/internal/modules/service"
	"github.com/DataRockMyWorld/workshopctl/internal/tui"
	"github.com/spf13/cobra"
)

var (
	customerPage int
	customerJSON bool
)

var CustomersCmd = &cobra.Command{
	Use:   "customers",
	Short: "Browse customers",
}

var customersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List customers",
	Args:  cobra.NoArgs,
	RunE:  runCustomersList,
}

var customersGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one customer",
	Args:  cobra.ExactArgs(1),
	RunE:  runCustomersGet,
}

func init() {
	customersListCmd.Flags().IntVar(&customerPage, "page", 1, "page number")
	customersListCmd.Flags().BoolVar(&customerJSON, "json", false, "print raw JSON")
	customersGetCmd.Flags().BoolVar(&customerJSON, "json", false, "print raw JSON")
	CustomersCmd.AddCommand(customersListCmd, customersGetCmd)
}

func runCustomersList(cmd *cobra.Command, _ []string) error {
	if _, err := signedIn(cmd); err != nil {
		return err
	}
	svc, err := invoke[service.CustomerService](cmd)
	if err != nil {
		return err
	}
	page, err := svc.List(cmd.Context(), customerPage)
	if err != nil {
		return fail(cmd, err)
	}
	if customerJSON {
		return writeJSON(cmd.OutOrStdout(), page)
	}

	rows := make([][]string, 0, len(page.Results))
	for _, c := range page.Results {
		reminders := "no"
		if c.ReceiveServiceReminders {
			reminders = "yes"
		}
		rows = append(rows, []string{strconv.Itoa(c.ID), c.FullName(), orDash(c.PhoneNumber), reminders})
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, tui.Table([]string{"ID", "Name", "Phone", "Reminders"}, rows, -1))
	fmt.Fprintln(w, tui.Footer(customerPage, page.Pages(), page.Count))
	return nil
}

func runCustomersGet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if _, err := signedIn(cmd); err != nil {
		return err
	}
	svc, err := invoke[service.CustomerService](cmd)
	if err != nil {
		return err
	}
	c, err := svc.Get(cmd.Context(), id)
	if err != nil {
		return fail(cmd, err)
	}
	if customerJSON {
		return writeJSON(cmd.OutOrStdout(), c)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, tui.TitleStyle.Render(c.FullName()))
	fmt.Fprintln(w, tui.RenderKV("phone", orDash(c.PhoneNumber)))
	if c.Email != nil {
		fmt.Fprintln(w, tui.RenderKV("email", *c.Email))
	}
	fmt.Fprintln(w, tui.RenderKV("reminders", c.ReceiveServiceReminders))
	return nil
}
