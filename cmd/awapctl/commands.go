package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newHealthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the health of the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return newAPIClient(opts).do(cmd, http.MethodGet, "/healthz", nil)
		},
	}
}

func newStartTournamentCmd(opts *options) *cobra.Command {
	var bracket string

	cmd := &cobra.Command{
		Use:   "start-tournament",
		Short: "Send every eligible team of a bracket to the matchmaker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bracket = strings.ToLower(strings.TrimSpace(bracket))
			if bracket != "beginner" && bracket != "advanced" {
				return fmt.Errorf("--bracket must be beginner or advanced")
			}
			return newAPIClient(opts).do(cmd, http.MethodPost, "/v1/admin/tournaments", map[string]string{"bracket": bracket})
		},
	}
	cmd.Flags().StringVar(&bracket, "bracket", "", "Bracket to run: beginner or advanced")
	_ = cmd.MarkFlagRequired("bracket")

	return cmd
}

func newStartScrimmagesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "start-scrimmages",
		Short: "Start a ranked scrimmage round",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return newAPIClient(opts).do(cmd, http.MethodPost, "/v1/admin/scrimmages", nil)
		},
	}
}

func newPermissionsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permissions",
		Short: "Inspect or change permission flags",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Print the current permission flags",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return newAPIClient(opts).do(cmd, http.MethodGet, "/v1/admin/permissions", nil)
			},
		},
		&cobra.Command{
			Use:     "set <flag> <true|false>",
			Short:   "Enable or disable one permission flag",
			Example: "  awapctl permissions set scrimmage_requests false",
			Args:    cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				enabled, err := strconv.ParseBool(args[1])
				if err != nil {
					return fmt.Errorf("invalid value %q for %s: %w", args[1], args[0], err)
				}
				body := map[string]bool{strings.TrimSpace(args[0]): enabled}
				return newAPIClient(opts).do(cmd, http.MethodPost, "/v1/admin/permissions", body)
			},
		},
	)

	return cmd
}
