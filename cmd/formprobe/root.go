package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"formprobe/internal/browser"
	"formprobe/internal/config"
	"formprobe/internal/form"
	"formprobe/internal/logger"
	"formprobe/internal/registry"
)

var version = "dev"

// app carries the state shared by every subcommand: configuration and
// the logger, both materialized by the root's PersistentPreRunE.
type app struct {
	cfgPath string
	cfg     *config.Config
	log     logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "formprobe",
		Short:         "Discover a form's value domains and property-test its validation",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.cfgPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.New(logger.Options{
				Level:   cfg.Log.Level,
				Writers: cfg.Log.Writer,
				File:    cfg.Log.File,
			})
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "path to a YAML config file")

	cmd.AddCommand(newScanCmd(a))
	cmd.AddCommand(newRunCmd(a))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// attach dials the browser and builds a controller over the configured
// form page. The caller owns the session's lifetime.
func (a *app) attach(ctx context.Context) (*browser.Session, *form.Controller, error) {
	sess, err := browser.Dial(ctx,
		a.cfg.Form.DevToolsURL,
		time.Duration(a.cfg.Form.NavigateTimeoutMS)*time.Millisecond,
		a.log)
	if err != nil {
		return nil, nil, fmt.Errorf("attach browser: %w", err)
	}
	ctrl := form.NewController(sess, registry.NewStudentForm(a.log), form.Options{
		URL:            a.cfg.Form.URL,
		WaitTimeout:    time.Duration(a.cfg.Form.WaitTimeoutMS) * time.Millisecond,
		ConsentTimeout: time.Duration(a.cfg.Form.ConsentTimeoutMS) * time.Millisecond,
	}, a.log)
	return sess, ctrl, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "formprobe", version)
		},
	}
}
