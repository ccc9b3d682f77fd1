package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/DataRockMyWorld/workshopctl/internal/apiclient"
	"github.com/DataRockMyWorld/workshopctl/internal/modules/service"
	"github.com/DataRockMyWorld/workshopctl/internal/tui"
	"github.com/bytedance/sonic"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

type ctxKey string

const (
	versionKey  ctxKey = "version"
	injectorKey ctxKey = "injector"
)

var ErrNotSignedIn = errors.New("not signed in, run `workshopctl login` first")

func withValue(cmd *cobra.Command, key ctxKey, v any) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, key, v))
}

// SetVersion stores the build version in the command context.
func SetVersion(cmd *cobra.Command, v string) { withValue(cmd, versionKey, v) }

func GetVersion(cmd *cobra.Command) string {
	if ctx := cmd.Context(); ctx != nil {
		if v, ok := ctx.Value(versionKey).(string); ok {
			return v
		}
	}
	return "dev"
}

// SetInjector makes the container available to subcommands.
func SetInjector(cmd *cobra.Command, inj *do.Injector) { withValue(cmd, injectorKey, inj) }

func invoke[T any](cmd *cobra.Command) (T, error) {
	var zero T
	ctx := cmd.Context()
	if ctx == nil {
		return zero, errors.New("command has no context")
	}
	inj, ok := ctx.Value(injectorKey).(*do.Injector)
	if !ok {
		return zero, errors.New("container not initialised")
	}
	return do.Invoke[T](inj)
}

// signedIn restores the stored session or fails with ErrNotSignedIn.
func signedIn(cmd *cobra.Command) (*service.Identity, error) {
	auth, err := invoke[service.AuthService](cmd)
	if err != nil {
		return nil, err
	}
	id, err := auth.Restore(cmd.Context())
	if err != nil {
		return nil, fail(cmd, err)
	}
	if id == nil {
		return nil, ErrNotSignedIn
	}
	return id, nil
}

// fail turns an API error into its display message and notes when it ended the session.
func fail(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, apiclient.ErrSessionEnded) {
		fmt.Fprintln(cmd.ErrOrStderr(), tui.RenderWarning("You have been signed out. Run `workshopctl login` to continue."))
	}
	return errors.New(apiclient.ErrorMessage(err))
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func writeJSON(w io.Writer, v any) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// optionalInt returns nil for flags that were not set.
func optionalInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		return nil
	}
	return &v
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func intOrDash(p *int) string {
	if p == nil {
		return "—"
	}
	return strconv.Itoa(*p)
}
