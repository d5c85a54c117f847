package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkjump/internal/domain"
	"github.com/MrSnakeDoc/linkjump/internal/platform"
)

var (
	resolvePackage  string
	resolveShortcut string
	resolveURI      string
	resolveWeb      string
	fallbackToStore bool
	acceptPreviews  bool
)

// resolveCmd runs one link through the resolution chain
var resolveCmd = &cobra.Command{
	Use:   "resolve [link.json|-]",
	Short: "Run a link through the resolution chain",
	Long: `Runs a link on the simulated device and prints the outcome and the
journal of everything the device was asked to do.

The link is either a server link JSON file (the package comes from --package)
or built from the manual flags, like the link tester.

Examples:
  linkjumpctl resolve -p device.yaml --package com.yelp.android link.json
  linkjumpctl resolve -p device.yaml --package com.yelp.android --shortcut nearby
  linkjumpctl resolve -p device.yaml --web https://example.com --fallback`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolvePackage, "package", "", "destination package")
	resolveCmd.Flags().StringVar(&resolveShortcut, "shortcut", "", "platform shortcut id")
	resolveCmd.Flags().StringVar(&resolveURI, "uri", "", "uri scheme")
	resolveCmd.Flags().StringVar(&resolveWeb, "web", "", "web link")
	resolveCmd.Flags().BoolVar(&fallbackToStore, "fallback", false, "fall back to the store listing")
	resolveCmd.Flags().BoolVar(&acceptPreviews, "accept-previews", false, "open the children of presented deep views")
}

type resolveOutput struct {
	Device  string           `json:"device"`
	Link    *domain.Link     `json:"link"`
	Outcome domain.Outcome   `json:"outcome"`
	Journal []platform.Event `json:"journal"`
}

// runResolve prints the outcome and fails with the routing error when
// nothing opened.
func runResolve(cmd *cobra.Command, args []string) error {
	link, err := buildLink(cmd, args)
	if err != nil {
		return err
	}

	sim, err := loadSimulator()
	if err != nil {
		return err
	}
	sess := newSession(sim, acceptPreviews)
	out := link.Resolve(sess.Env(), fallbackToStore)

	if err := printJSON(cmd, resolveOutput{
		Device:  sess.Device().Name,
		Link:    link,
		Outcome: out,
		Journal: sess.Journal(),
	}); err != nil {
		return err
	}
	return out.Err()
}

func buildLink(cmd *cobra.Command, args []string) (*domain.Link, error) {
	if len(args) == 1 {
		data, err := readInput(cmd, args[0])
		if err != nil {
			return nil, err
		}
		return domain.ParseLink(data, domain.AppInfo{PackageName: resolvePackage})
	}

	if strings.TrimSpace(resolvePackage+resolveShortcut+resolveURI+resolveWeb) == "" {
		return nil, errors.New("nothing to resolve: pass a link file or at least one of --package, --shortcut, --uri, --web")
	}
	return domain.NewLink(domain.LinkFields{
		DestinationPackage: resolvePackage,
		AndroidShortcutID:  resolveShortcut,
		URIScheme:          resolveURI,
		WebLink:            resolveWeb,
	}), nil
}
