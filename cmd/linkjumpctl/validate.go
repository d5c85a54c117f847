package main

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkjump/internal/domain"
	"github.com/MrSnakeDoc/linkjump/internal/platform"
)

var (
	targetPackage string
	targetName    string
	targetWeb     string
	openHandler   bool
)

// validateCmd parses a handler tree and validates it against a target
var validateCmd = &cobra.Command{
	Use:   "validate [handler.json|-]",
	Short: "Parse a handler tree and validate it on the device",
	Long: `Parses a server-authored handler tree, reports where it is malformed,
and otherwise validates it against a target link on the simulated device.
With --open a valid tree is opened too.

Examples:
  linkjumpctl validate -p device.yaml --package com.yelp.android handler.json
  cat handler.json | linkjumpctl validate -p device.yaml --open -`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&targetPackage, "package", "", "package of the target link")
	validateCmd.Flags().StringVar(&targetName, "name", "", "name of the target link")
	validateCmd.Flags().StringVar(&targetWeb, "web", "", "web link of the target link")
	validateCmd.Flags().BoolVar(&openHandler, "open", false, "open the tree when it is valid")
	validateCmd.Flags().BoolVar(&acceptPreviews, "accept-previews", false, "open the children of presented deep views")
}

type validateOutput struct {
	Device  string           `json:"device"`
	Type    string           `json:"type"`
	Valid   bool             `json:"valid"`
	Opened  bool             `json:"opened"`
	Handler domain.Handler   `json:"handler"`
	Journal []platform.Event `json:"journal"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}
	h, err := domain.ParseHandler(data)
	if err != nil {
		return err
	}

	sim, err := loadSimulator()
	if err != nil {
		return err
	}
	sess := newSession(sim, acceptPreviews)
	env := sess.Env()

	target := domain.NewLink(domain.LinkFields{
		Name:               targetName,
		DestinationPackage: targetPackage,
		WebLink:            targetWeb,
		Handler:            h,
	})

	out := validateOutput{
		Device:  sess.Device().Name,
		Type:    string(h.Type()),
		Valid:   h.Validate(env, target),
		Handler: h,
	}
	if openHandler && out.Valid {
		out.Opened = h.Open(env, target)
	}
	out.Journal = sess.Journal()

	log.Debug("handler validated")
	return printJSON(cmd, out)
}
