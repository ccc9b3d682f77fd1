package cmd

import (
	"errors"
	"fmt"

	"github.com/DataRockMyWorld/workshopctl/internal/config"
	"github.com/DataRockMyWorld/workshopctl/internal/modules/service"
	"github.com/DataRockMyWorld/workshopctl/internal/tui"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the workshop backend",
	Long: `Sign in with your workshop account. The access and refresh tokens are kept
in the configured session store and renewed automatically when the access token expires.

Missing credentials are prompted for; the password is never echoed.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and revoke the refresh token",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var WhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account and its permissions",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	LoginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
	LoginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password (prompted when omitted)")
}

func runLogin(cmd *cobra.Command, _ []string) error {
	auth, err := invoke[service.AuthService](cmd)
	if err != nil {
		return err
	}

	email := loginEmail
	if email == "" {
		def := ""
		if cfg, err := invoke[*config.Config](cmd); err == nil {
			def = cfg.Smoke.Email
		}
		if email, err = tui.RunInput("Email:", "you@workshop.com", def); err != nil {
			return err
		}
	}
	password := loginPassword
	if password == "" {
		if password, err = tui.RunPassword("Password:"); err != nil {
			return err
		}
	}

	id, err := auth.SignIn(cmd.Context(), email, password)
	if errors.Is(err, service.ErrEmptyCredentials) {
		return err
	}
	if err != nil {
		return fail(cmd, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), tui.RenderSuccess("Signed in as "+id.Email))
	printPermissions(cmd, id)
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	auth, err := invoke[service.AuthService](cmd)
	if err != nil {
		return err
	}
	if err := auth.SignOut(cmd.Context()); err != nil {
		return fail(cmd, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), tui.RenderSuccess("Signed out"))
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	id, err := signedIn(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tui.TitleStyle.Render(id.Email))
	printPermissions(cmd, id)
	return nil
}

func printPermissions(cmd *cobra.Command, id *service.Identity) {
	p := id.Permissions
	access := "read and write"
	if !p.CanWrite {
		access = "read only"
	}
	scope := "site " + intOrDash(p.SiteID)
	if p.CanSeeAllSites {
		scope = "all sites"
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, tui.RenderKV("access", access))
	fmt.Fprintln(w, tui.RenderKV("scope", scope))
	if p.IsSuperuser {
		fmt.Fprintln(w, tui.RenderKV("role", "superuser"))
	}
}
