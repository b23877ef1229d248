package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"club-bridge/internal/infra/api"
)

var digestAt string

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Render a digest to stdout",
}

var digestDailyCmd = &cobra.Command{
	Use:   "daily <user_slug>",
	Short: "Render the daily digest of one user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		now, err := parseAt(digestAt)
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		d, err := a.digestUC.Daily(cmd.Context(), args[0], now)
		if err != nil {
			return err
		}
		return renderTo(cmd, a, api.PageDaily, d)
	},
}

var digestWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Render the weekly club journal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		now, err := parseAt(digestAt)
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		d, err := a.digestUC.Weekly(cmd.Context(), now)
		if err != nil {
			return err
		}
		return renderTo(cmd, a, api.PageWeekly, d)
	},
}

func init() {
	digestCmd.PersistentFlags().StringVar(&digestAt, "at", "", "render as of this RFC3339 time (default: now)")
	digestCmd.AddCommand(digestDailyCmd, digestWeeklyCmd)
}

func parseAt(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--at: %w", err)
	}
	return t, nil
}

func renderTo(cmd *cobra.Command, a *app, page string, data interface{}) error {
	body, err := api.NewPages(a.tr, a.links).Execute(page, data)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(body)
	return err
}
