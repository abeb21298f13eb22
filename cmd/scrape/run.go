package main

import (
	"encoding/json"
	"io"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/user/catalog-crawler/internal/app"
	"github.com/user/catalog-crawler/internal/entity"
)

var runCmd = &cobra.Command{
	Use:   "run <website>",
	Short: "Scrape one website by name or id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := app.New(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		scrapeLog, err := a.Manager.RunScrape(ctx, args[0])
		if err != nil {
			return eris.Wrapf(err, "scrape %s", args[0])
		}
		return printLogs(cmd.OutOrStdout(), scrapeLog)
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Scrape every enabled website",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := app.New(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		logs, err := a.Manager.RunAll(ctx)
		if err != nil {
			return err
		}
		return printLogs(cmd.OutOrStdout(), logs...)
	},
}

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List the site configurations this binary can scrape",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		registry, err := app.NewSiteRegistry(cfg)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(registry.Names())
	},
}

func printLogs(w io.Writer, logs ...*entity.ScrapeLog) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	for _, l := range logs {
		if err := enc.Encode(l); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd, allCmd, sitesCmd)
}
