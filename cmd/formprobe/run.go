package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"formprobe/internal/cache"
	"formprobe/internal/fixtures"
	"formprobe/internal/form"
	"formprobe/internal/scanner"
	"formprobe/internal/storage"
	"formprobe/internal/strategy"
	"formprobe/internal/suite"
	"formprobe/pkg/model"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		trials  int
		seed    int64
		noCache bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the property campaign against the live form",
		Long: `Run drives the full campaign: domains come from the cache file when
present (or a fresh scan otherwise), per-field generators are derived
from them, and every field is exercised with valid and invalid inputs
through live fill-submit-verify cycles. Trial outcomes are persisted
to SQLite and summarized at the end.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if trials > 0 {
				a.cfg.Suite.Trials = trials
			}
			if cmd.Flags().Changed("seed") {
				a.cfg.Suite.Seed = seed
			}

			sess, ctrl, err := a.attach(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := ctrl.Load(ctx); err != nil {
				return err
			}

			fs := afero.NewOsFs()
			cacheStore := cache.NewStore(fs, a.cfg.Scan.CachePath, a.log)

			var ds model.DomainSet
			if noCache {
				ds, err = discoverAndSave(cmd, a, ctrl, cacheStore)
			} else {
				ds, err = cacheStore.Load()
				if errors.Is(err, cache.ErrMiss) {
					a.log.Info("no domain cache, scanning first")
					ds, err = discoverAndSave(cmd, a, ctrl, cacheStore)
				}
			}
			if err != nil {
				return err
			}
			ctrl.AttachDomains(ds)

			lib := fixtures.New(fs, a.cfg.Suite.PicturesDir)
			eng := strategy.NewEngine(ds, lib, nil)
			base, err := suite.CanonicalRecord(ds, lib, time.Now())
			if err != nil {
				return err
			}

			store, err := storage.Open(a.cfg.Sqlite.Dsn, a.cfg.Sqlite.Prefix, a.log)
			if err != nil {
				return err
			}
			defer store.Close()

			runner := suite.NewRunner(ctrl, eng, base, suite.Options{
				Trials:   a.cfg.Suite.Trials,
				Seed:     a.cfg.Suite.Seed,
				Recorder: store,
				Log:      a.log,
			})

			results, err := runner.Run(ctx)
			if err != nil {
				return err
			}
			printResults(cmd, results)
			printTallies(cmd, store, runner.RunID())

			for _, res := range results {
				if !res.Passed() {
					return fmt.Errorf("%d of %d properties failed", countFailed(results), len(results))
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&trials, "trials", 0, "trials per property (overrides config)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "generator seed (overrides config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "rescan domains even when a cache file exists")
	return cmd
}

func discoverAndSave(cmd *cobra.Command, a *app, ctrl *form.Controller, cacheStore *cache.Store) (model.DomainSet, error) {
	sc := scanner.New(a.cfg.Scan.Alphabet, a.log)
	ds, err := ctrl.DiscoverDomains(cmd.Context(), sc)
	if err != nil {
		return ds, err
	}
	if err := cacheStore.Save(ds); err != nil {
		return ds, err
	}
	return ds, nil
}

func printResults(cmd *cobra.Command, results []suite.Result) {
	out := cmd.OutOrStdout()
	pass := color.New(color.FgGreen)
	fail := color.New(color.FgRed, color.Bold)

	for _, res := range results {
		if res.Passed() {
			pass.Fprintf(out, "PASS  %-40s (%d trials)\n", res.Name, res.Trials)
		} else {
			fail.Fprintf(out, "FAIL  %-40s %v\n", res.Name, res.Err)
		}
	}
}

func printTallies(cmd *cobra.Command, store *storage.Store, runID model.RunID) {
	tallies, err := store.Summary(runID)
	if err != nil || len(tallies) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	color.New(color.Bold).Fprintln(out, "\ntrials by field")
	for _, t := range tallies {
		fmt.Fprintf(out, "  %-20s %-8s %4d trials, %4d accepted\n", t.Field, t.Class, t.Total, t.Accepted)
	}
}

func countFailed(results []suite.Result) int {
	n := 0
	for _, res := range results {
		if !res.Passed() {
			n++
		}
	}
	return n
}
