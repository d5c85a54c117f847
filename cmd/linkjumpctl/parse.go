package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkjump/internal/catalog"
	"github.com/MrSnakeDoc/linkjump/internal/logger"
)

var parseConcurrency int

// parseCmd filters a captured search response against the device
var parseCmd = &cobra.Command{
	Use:   "parse [response.json|-]",
	Short: "Parse a search response and filter it for the device",
	Long: `Parses a captured search response the same way the catalog reloader
does: invalid shortcuts are dropped, uninstalled apps keep only web and
app-scheme links up to their maximum, and empty apps disappear.

Example:
  linkjumpctl parse -p device.yaml catalog.json`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().IntVar(&parseConcurrency, "concurrency", catalog.DefaultParseConcurrency, "apps filtered at once")
}

func runParse(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}
	sim, err := loadSimulator()
	if err != nil {
		return err
	}
	env := newSession(sim, false).Env()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := catalog.ParseSearchResponse(ctx, data, env, parseConcurrency)
	if err != nil {
		return err
	}

	log.Info("search response parsed",
		logger.String("request_id", res.RequestID),
		logger.Int("apps", len(res.Apps)),
		logger.Int("links", len(res.Links())))

	return printJSON(cmd, res)
}
