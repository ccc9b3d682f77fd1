package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/DataRockMyWorld/workshopctl/cmd"
	"github.com/DataRockMyWorld/workshopctl/internal/bootstrap"
	"github.com/DataRockMyWorld/workshopctl/internal/config"
	"github.com/DataRockMyWorld/workshopctl/internal/telemetry"
	"github.com/DataRockMyWorld/workshopctl/internal/tui"
	ver "github.com/DataRockMyWorld/workshopctl/internal/version"
	"github.com/samber/do"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var version = "dev"

var (
	cfgFile     string
	checkLatest bool
	cmdSpan     trace.Span
)

func main() {
	telemetry.Version = version

	err := rootCmd.ExecuteContext(context.Background())
	endCommandSpan(err)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	_ = telemetry.Shutdown(shutdownCtx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, tui.RenderError(err.Error()))
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "Workshop management from the terminal",
	Long: `workshopctl talks to the workshop backend with your account: sign in once and
browse service requests, customers, invoices and the dashboard. Expired access
tokens are renewed automatically.

Get started: workshopctl login`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: prepare,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default "+config.DefaultPath()+")")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cmd.LoginCmd, cmd.LogoutCmd, cmd.WhoamiCmd)
	rootCmd.AddCommand(cmd.ServiceRequestsCmd, cmd.CustomersCmd, cmd.InvoicesCmd, cmd.ReportsCmd, cmd.DashboardCmd)
	rootCmd.AddCommand(cmd.APICmd, cmd.SmokeCmd, cmd.MockServerCmd, cmd.ConfigCmd)

	versionCmd.Flags().BoolVar(&checkLatest, "check", false, "check for a newer release")
}

// prepare wires the container and, when enabled, tracing for the command about to run.
func prepare(c *cobra.Command, _ []string) error {
	cmd.SetVersion(c, version)
	inj := bootstrap.BuildContainer(cfgFile)
	cmd.SetInjector(c, inj)

	// config problems surface from the commands that need it
	cfg, err := do.Invoke[*config.Config](inj)
	if err != nil {
		return nil
	}
	if _, err := telemetry.SetupTracing(cfg); err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}

	path := buildCommandPath(c)
	ctx, span := otel.Tracer(config.AppName).Start(c.Context(), "cli."+path)
	cmdSpan = span
	c.SetContext(ctx)

	if log, err := do.Invoke[*zap.Logger](inj); err == nil {
		log.Debug("run command", zap.String("command", path), zap.String("version", version))
	}
	return nil
}

func endCommandSpan(err error) {
	if cmdSpan == nil {
		return
	}
	if err != nil {
		cmdSpan.SetStatus(codes.Error, err.Error())
	}
	cmdSpan.End()
}

// buildCommandPath joins the command names below the root with dots, e.g. "service-requests.list".
func buildCommandPath(c *cobra.Command) string {
	var parts []string
	for cur := c; cur != nil && cur.HasParent(); cur = cur.Parent() {
		parts = append([]string{cur.Name()}, parts...)
	}
	if len(parts) == 0 {
		return "root"
	}
	return strings.Join(parts, ".")
}

// GetVersion returns the build version.
func GetVersion() string {
	return version
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(c *cobra.Command, _ []string) error {
		w := c.OutOrStdout()
		fmt.Fprintf(w, "%s version %s\n", config.AppName, GetVersion())
		if !checkLatest {
			return nil
		}
		newer, latest, err := ver.UpdateAvailable(c.Context(), GetVersion())
		if err != nil {
			return fmt.Errorf("check for updates: %w", err)
		}
		if newer {
			fmt.Fprintln(w, tui.RenderWarning("New version available: "+latest))
		} else {
			fmt.Fprintln(w, tui.RenderSuccess("Up to date"))
		}
		return nil
	},
}
