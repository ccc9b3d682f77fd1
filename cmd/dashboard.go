package cmd

import (
	"fmt"
	"strconv"

	"github.com/DataRockMyWorld/workshopctl/internal/modules/service"
	"github.com/DataRockMyWorld/workshopctl/internal/pkg/currency"
	"github.com/DataRockMyWorld/workshopctl/internal/tui"
	"github.com/spf13/cobra"
)

var dashboardPeriod int

var DashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the HQ dashboard, or the site view for site accounts",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

func init() {
	DashboardCmd.Flags().IntVar(&dashboardPeriod, "period", 30, "period in days")
	DashboardCmd.Flags().Int("site", 0, "limit the HQ dashboard to one site")
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	id, err := signedIn(cmd)
	if err != nil {
		return err
	}
	svc, err := invoke[service.DashboardService](cmd)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if !id.Permissions.CanSeeAllSites {
		m, err := svc.Site(cmd.Context())
		if err != nil {
			return fail(cmd, err)
		}
		fmt.Fprintln(w, tui.TitleStyle.Render("Site "+intOrDash(id.Permissions.SiteID)))
		fmt.Fprintln(w, tui.RenderKV("revenue today", currency.Format(m.RevenueToday)))
		fmt.Fprintln(w, tui.RenderKV("revenue week", currency.Format(m.RevenueWeek)))
		fmt.Fprintln(w, tui.RenderKV("sales today", m.SalesCountToday))
		fmt.Fprintln(w, tui.RenderKV("sales week", m.SalesCountWeek))
		fmt.Fprintln(w, tui.RenderKV("paid today", currency.Format(m.PaidToday)))
		fmt.Fprintln(w, tui.RenderKV("unpaid today", currency.Format(m.UnpaidToday)))
		return nil
	}

	d, err := svc.Get(cmd.Context(), dashboardPeriod, optionalInt(cmd, "site"))
	if err != nil {
		return fail(cmd, err)
	}
	s := d.Summary
	fmt.Fprintln(w, tui.TitleStyle.Render(fmt.Sprintf("Last %d days", d.PeriodDays)))
	fmt.Fprintln(w, tui.RenderKV("revenue", currency.Format(s.TotalRevenue)))
	fmt.Fprintln(w, tui.RenderKV("service requests", s.TotalServiceRequests))
	fmt.Fprintln(w, tui.RenderKV("pending", s.Pending))
	fmt.Fprintln(w, tui.RenderKV("in progress", s.InProgress))
	fmt.Fprintln(w, tui.RenderKV("completed", s.Completed))
	fmt.Fprintln(w, tui.RenderKV("customers", s.TotalCustomers))

	if len(d.BySite) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(d.BySite))
	for _, site := range d.BySite {
		rows = append(rows, []string{
			site.Name,
			strconv.Itoa(site.ServiceRequests),
			strconv.Itoa(site.Pending),
			strconv.Itoa(site.InProgress),
			strconv.Itoa(site.Completed),
			currency.Format(site.Revenue),
		})
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, tui.Table([]string{"Site", "Jobs", "Pending", "In progress", "Completed", "Revenue"}, rows, -1))
	return nil
}
