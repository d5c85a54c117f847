package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkjump/internal/domain"
	"github.com/MrSnakeDoc/linkjump/internal/logger"
	"github.com/MrSnakeDoc/linkjump/internal/platform"
	"github.com/MrSnakeDoc/linkjump/internal/sources/profile"
	"github.com/MrSnakeDoc/linkjump/internal/version"
)

var (
	// Global flags
	profileFile string
	logLevel    string
	launchFlags int

	log logger.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "linkjumpctl",
	Short: "Resolve deep links offline against a simulated device",
	Long: `linkjumpctl runs links, handler trees and captured search responses
through the resolution chain against a device described by a YAML profile.
Nothing is launched for real and no click is ever tracked.

Every command prints JSON on stdout. Logs go to stderr.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log = logger.New(logLevel, true)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&profileFile, "profile", "p", "", "device profile YAML")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug | info | warn | error")
	rootCmd.PersistentFlags().IntVar(&launchFlags, "launch-flags", 0, "flags stamped on every launched action")

	rootCmd.AddCommand(resolveCmd, validateCmd, parseCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

// loadSimulator builds a simulator from --profile. Without a profile the
// device has nothing installed.
func loadSimulator() (*platform.Simulator, error) {
	if profileFile == "" {
		return platform.NewSimulator(nil), nil
	}
	f, err := profile.NewLoader(profileFile).Load()
	if err != nil {
		return nil, err
	}
	device, err := profile.NewMapper().MapDevice(f)
	if err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", profileFile, err)
	}
	return platform.NewSimulator(device), nil
}

func newSession(sim *platform.Simulator, acceptPreviews bool) *platform.Session {
	return sim.NewSession(platform.SessionOptions{
		LaunchFlags:    domain.LaunchFlags(launchFlags),
		Logger:         log,
		AcceptPreviews: acceptPreviews,
	})
}

// readInput reads a file argument, "-" meaning stdin.
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
