package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/DataRockMyWorld/workshopctl/internal/config"
	"github.com/DataRockMyWorld/workshopctl/internal/mockapi"
	"github.com/DataRockMyWorld/workshopctl/internal/tui"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var mockAddr string

var MockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Run a local stand-in for the workshop backend",
	Long: `Serve the login, refresh and logout endpoints plus a small seeded data set
(service requests, customers, invoices, dashboard) for local development and
for running the smoke suite without a real backend.

The demo accounts use the smoke credentials: the configured smoke.email is an
HQ superuser and supervisor@test.com is a site-1 supervisor.`,
	Args: cobra.NoArgs,
	RunE: runMockServer,
}

func init() {
	MockServerCmd.Flags().StringVar(&mockAddr, "addr", "", "listen address (default mock.addr)")
}

func runMockServer(cmd *cobra.Command, _ []string) error {
	cfg, err := invoke[*config.Config](cmd)
	if err != nil {
		return err
	}
	if mockAddr != "" {
		cfg.Mock.Addr = mockAddr
	}
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := invoke[*mockapi.Server](cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Println(tui.RenderInfo("Mock API on " + cfg.Mock.Addr + " (ctrl+c to stop)"))
	return srv.Run(ctx)
}
