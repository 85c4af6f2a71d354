package main

import (
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"formprobe/internal/cache"
	"formprobe/internal/scanner"
)

func newScanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Discover every dropdown domain and write the cache file",
		Long: `Scan loads the form, sweeps each type-ahead dropdown with the probe
alphabet to enumerate its full value domain, walks the state/city
hierarchy one state at a time and writes the result to the domain
cache file. The run command reuses that file to skip discovery.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			sess, ctrl, err := a.attach(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := ctrl.Load(ctx); err != nil {
				return err
			}

			sc := scanner.New(a.cfg.Scan.Alphabet, a.log)
			ds, err := ctrl.DiscoverDomains(ctx, sc)
			if err != nil {
				return err
			}

			store := cache.NewStore(afero.NewOsFs(), a.cfg.Scan.CachePath, a.log)
			if err := store.Save(ds); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			color.New(color.FgGreen, color.Bold).Fprintln(out, "domains discovered")
			color.New(color.FgCyan).Fprintf(out, "  genders:  %d\n", len(ds.Genders))
			color.New(color.FgCyan).Fprintf(out, "  hobbies:  %d\n", len(ds.Hobbies))
			color.New(color.FgCyan).Fprintf(out, "  subjects: %d\n", len(ds.Subjects))
			color.New(color.FgCyan).Fprintf(out, "  states:   %d\n", len(ds.StateCityMap))
			color.New(color.Faint).Fprintf(out, "cache written to %s\n", a.cfg.Scan.CachePath)
			return nil
		},
	}
}
