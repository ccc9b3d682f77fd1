package cmd

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/DataRockMyWorld/workshopctl/internal/apiclient"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var (
	apiData    string
	apiHeaders []string
)

var APICmd = &cobra.Command{
	Use:   "api <method> <path>",
	Short: "Send an authenticated request and print the JSON reply",
	Long: `Send a raw request through the authenticated client. Paths are relative to the
API prefix unless they start with /auth/. Expired access tokens are refreshed
once, like every other command.

Example:
  workshopctl api GET service_request/?page=2
  workshopctl api POST service_request/12/complete/ --data '{"notes":"done"}'`,
	Args: cobra.ExactArgs(2),
	RunE: runAPI,
}

func init() {
	APICmd.Flags().StringVar(&apiData, "data", "", "JSON request body")
	APICmd.Flags().StringArrayVarP(&apiHeaders, "header", "H", nil, "extra header as Key: Value")
}

func runAPI(cmd *cobra.Command, args []string) error {
	method := strings.ToUpper(args[0])
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return fmt.Errorf("unsupported method %q", args[0])
	}

	opts := []apiclient.RequestOption{apiclient.WithMethod(method)}
	if apiData != "" {
		if !gjson.Valid(apiData) {
			return fmt.Errorf("--data is not valid JSON")
		}
		opts = append(opts, apiclient.WithBody([]byte(apiData), "application/json"))
	}
	for _, h := range apiHeaders {
		k, v, ok := strings.Cut(h, ":")
		if !ok {
			return fmt.Errorf("header %q must look like Key: Value", h)
		}
		opts = append(opts, apiclient.WithHeader(strings.TrimSpace(k), strings.TrimSpace(v)))
	}

	if _, err := signedIn(cmd); err != nil {
		return err
	}
	client, err := invoke[*apiclient.Client](cmd)
	if err != nil {
		return err
	}
	resp, err := client.Do(cmd.Context(), args[1], opts...)
	if err != nil {
		return fail(cmd, err)
	}
	return writeJSON(cmd.OutOrStdout(), resp.Data)
}
