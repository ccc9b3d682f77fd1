package cmd

import (
	"fmt"
	"time"

	"github.com/DataRockMyWorld/workshopctl/internal/config"
	"github.com/DataRockMyWorld/workshopctl/internal/smoke"
	"github.com/DataRockMyWorld/workshopctl/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	smokeAPIURL      string
	smokeFrontendURL string
	smokeParallel    int
)

var SmokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Run the end-to-end checks against a running backend",
	Long: `Run the end-to-end suite: unauthenticated access is rejected, valid credentials
reach the dashboard, invalid credentials show an error within 5 seconds and the
service request list loads. Each check signs in with its own session.

Credentials come from PW_TEST_EMAIL and PW_TEST_PASSWORD (or smoke.email and
smoke.password in the config file).`,
	Args: cobra.NoArgs,
	RunE: runSmoke,
}

func init() {
	SmokeCmd.Flags().StringVar(&smokeAPIURL, "api-url", "", "backend base URL (default api.base_url)")
	SmokeCmd.Flags().StringVar(&smokeFrontendURL, "frontend-url", "", "frontend URL; page checks are skipped when empty")
	SmokeCmd.Flags().IntVar(&smokeParallel, "parallel", 0, "max checks in flight (0 runs all at once)")
}

func runSmoke(cmd *cobra.Command, _ []string) error {
	cfg, err := invoke[*config.Config](cmd)
	if err != nil {
		return err
	}
	log, err := invoke[*zap.Logger](cmd)
	if err != nil {
		return err
	}

	opts := []smoke.Option{smoke.WithParallel(smokeParallel)}
	if smokeAPIURL != "" {
		opts = append(opts, smoke.WithAPIURL(smokeAPIURL))
	}
	if smokeFrontendURL != "" {
		opts = append(opts, smoke.WithFrontendURL(smokeFrontendURL))
	}

	report, err := smoke.NewRunner(cfg, log, opts...).Run(cmd.Context())
	if report != nil {
		printReport(cmd, report)
	}
	if err != nil {
		return err
	}
	if !report.Passed() {
		return fmt.Errorf("%d of %d checks failed", report.Failed(), len(report.Results))
	}
	return nil
}

func printReport(cmd *cobra.Command, report *smoke.Report) {
	rows := make([][]string, 0, len(report.Results))
	for _, res := range report.Results {
		status, detail := tui.SuccessStyle.Render("pass"), ""
		if !res.Passed() {
			status, detail = tui.ErrorStyle.Render("fail"), res.Err.Error()
		}
		rows = append(rows, []string{res.Name, status, res.Duration.Round(time.Millisecond).String(), detail})
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, tui.Table([]string{"Check", "Result", "Time", "Detail"}, rows, -1))
	fmt.Fprintln(w, tui.MutedStyle.Render(fmt.Sprintf("%d checks in %s", len(report.Results), report.Duration.Round(time.Millisecond))))
}
