package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gocrack/adapters/console"
	"gocrack/adapters/excel"
	"gocrack/adapters/octave"
	"gocrack/adapters/report"
	"gocrack/app"
	"gocrack/domain/core"
	"gocrack/domain/run"
	"gocrack/domain/series"
	"gocrack/internal"
	"gocrack/internal/config"
	"gocrack/internal/container"
	"gocrack/internal/crack"
	"gocrack/internal/errors"
	"gocrack/internal/synth"
	"gocrack/ports"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	rootCmd := &cobra.Command{
		Use:   "crack",
		Short: "Recover per-column XOR keystreams from repeated measurement series",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newGenerateCmd(),
		newRunsCmd(),
	)

	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ [%s] %v\n", errors.GetCode(err), err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var input, reportPath string
	var seed uint64
	var restarts int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Estimate and refine the keystream of a ciphertext",
		Long: `Estimate the keystream from bit means and refine it by annealing.

Without --input a synthetic scenario is generated, encrypted with a random
key, and the recovered key is scored against it.

Example: crack run --input cipher.m --restarts 8 --report run.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("input") {
				cfg.Data.Input = input
			}
			if cmd.Flags().Changed("seed") {
				cfg.Search.Seed = seed
			}
			if cmd.Flags().Changed("restarts") {
				cfg.Search.Restarts = restarts
			}
			if cmd.Flags().Changed("report") {
				cfg.Output.Report = reportPath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runCrack(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Ciphertext file (.m, .xlsx or .csv); empty runs a synthetic scenario")
	cmd.Flags().Uint64Var(&seed, "seed", 42, "Random seed for the searches")
	cmd.Flags().IntVar(&restarts, "restarts", 1, "Number of independent searches")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write a run report (.md or .html)")

	return cmd
}

func newGenerateCmd() *cobra.Command {
	var dir, format string
	var seed uint64

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic plaintext, its ciphertext and the key",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runGenerate(cmd.Context(), cfg, dir, format, seed)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Output directory")
	cmd.Flags().StringVar(&format, "format", "m", "Matrix format: m, xlsx or csv")
	cmd.Flags().Uint64Var(&seed, "seed", 42, "Scenario seed")

	return cmd
}

func newRunsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List recorded runs, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return errors.ConfigInvalid("DATABASE_URL is required to read the run ledger")
			}
			c, err := container.New(cfg)
			if err != nil {
				return err
			}
			defer c.Close()
			if err := c.InitLedger(cmd.Context()); err != nil {
				return err
			}
			runs := c.Runs

			if len(args) == 1 {
				id, err := core.ParseRunID(args[0])
				if err != nil {
					return errors.InvalidInput(err.Error())
				}
				rec, err := runs.GetRun(cmd.Context(), id)
				if core.IsNotFoundError(err) {
					return errors.NotFound("run " + id.String())
				}
				if err != nil {
					return err
				}
				printRecord(rec)
				return nil
			}

			recs, err := runs.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, rec := range recs {
				fmt.Printf("%s  %s  %-20s %4dx%-4d  %.6g -> %.6g\n",
					rec.ID, rec.CreatedAt.Format("2006-01-02 15:04"), rec.Source,
					rec.Days, rec.Measures, rec.InitialEnergy, rec.FinalEnergy)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")

	return cmd
}

func runCrack(ctx context.Context, cfg *config.Config) error {
	c, err := container.New(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.InitLedger(ctx); err != nil {
		return err
	}

	req := app.CrackRequest{
		Params:   searchParams(cfg.Search),
		Restarts: cfg.Search.Restarts,
		Workers:  cfg.Search.Workers,
		Seed:     cfg.Search.Seed,
		Rebase:   cfg.Search.Rebase,
	}
	if cfg.Output.Dumps {
		if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
			return errors.IOError(cfg.Output.Dir, err)
		}
		req.DumpDir = cfg.Output.Dir
	}

	if cfg.Data.Input != "" {
		source, err := matrixSource(cfg.Data.Input)
		if err != nil {
			return err
		}
		ct, err := source.ReadMatrix(ctx, cfg.Data.Input)
		if err != nil {
			return err
		}
		req.Source, req.Cipher = cfg.Data.Input, ct
		c.Logger.Info("Loaded %s: %d days x %d measures", cfg.Data.Input, ct.Days(), ct.Measures())
	} else {
		scenario, err := synth.Generate(scenarioConfig(cfg.Data, cfg.Search.Seed))
		if err != nil {
			return err
		}
		req.Source = "synthetic"
		req.Cipher, req.Plain, req.Key = scenario.Cipher, scenario.Plain, scenario.Key
		c.Logger.Info("Generated synthetic scenario: %d days x %d measures", cfg.Data.Days, cfg.Data.Measures)
	}

	svc := c.InitCrackService(console.NewReporter(os.Stdout))

	res, err := svc.Crack(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("Dispersion (improved): %.6g\n", res.Record.FinalEnergy)
	if ev := res.Evaluation; ev != nil {
		fmt.Printf("Key match: %.1f%% of columns below bit %d, %.1f%% in all bits\n",
			100*ev.LowBits, cfg.Search.MaxBit, 100*ev.FullColumns)
	}

	if cfg.Output.Report != "" {
		if err := report.Write(cfg.Output.Report, reportSummary(res)); err != nil {
			return err
		}
		c.Logger.Info("Report written to %s", cfg.Output.Report)
	}

	c.Logger.Info("Run %s recorded", res.Record.ID)
	return nil
}

func runGenerate(ctx context.Context, cfg *config.Config, dir, format string, seed uint64) error {
	scenario, err := synth.Generate(scenarioConfig(cfg.Data, seed))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.IOError(dir, err)
	}

	var sink ports.MatrixSinkPort = octave.NewStore()
	plainName, cipherName := "original."+format, "encrypted."+format
	if format != "m" {
		if !excel.Supports(plainName) {
			return errors.Wrapf(core.ErrUnsupportedFormat, "unknown format %q", format)
		}
		sink = excel.NewMatrixStore()
	}

	if err := sink.WriteMatrix(ctx, filepath.Join(dir, plainName), scenario.Plain); err != nil {
		return err
	}
	if err := sink.WriteMatrix(ctx, filepath.Join(dir, cipherName), scenario.Cipher); err != nil {
		return err
	}

	keyPath := filepath.Join(dir, "key.txt")
	if err := os.WriteFile(keyPath, []byte(run.EncodeMask(scenario.Key)+"\n"), 0o644); err != nil {
		return errors.IOError(keyPath, err)
	}

	internal.DefaultLogger.Info("Wrote %s, %s and key.txt to %s", plainName, cipherName, dir)
	return nil
}

// matrixSource picks the reader for a ciphertext file by its extension
func matrixSource(path string) (ports.MatrixSourcePort, error) {
	switch {
	case strings.EqualFold(filepath.Ext(path), ".m"):
		return octave.NewStore(), nil
	case excel.Supports(path):
		return excel.NewMatrixStore(), nil
	}
	return nil, errors.Wrapf(core.ErrUnsupportedFormat, "cannot read %s", path)
}

func searchParams(s config.SearchConfig) crack.Params {
	return crack.Params{
		Iterations:    s.Iterations,
		MaxBit:        s.MaxBit,
		BitCycles:     s.BitCycles,
		T0:            s.T0,
		K:             s.K,
		Width:         s.Width,
		FixedBaseline: s.FixedBaseline,
		FullRecompute: s.FullRecompute,
	}
}

func scenarioConfig(d config.DataConfig, seed uint64) synth.Config {
	cfg := synth.DefaultConfig()
	cfg.Days = d.Days
	cfg.Measures = d.Measures
	cfg.Mean = d.Mean
	cfg.Noise = d.Noise
	cfg.Seed = seed
	return cfg
}

func reportSummary(res *app.CrackResult) report.Summary {
	s := report.Summary{
		Record:    res.Record,
		Restarts:  res.Searches,
		Best:      res.Best,
		Trace:     res.Trace,
		TraceMean: res.TraceMean,
		TraceStd:  res.TraceStd,
	}
	for _, b := range res.Baselines {
		s.Baselines = append(s.Baselines, report.Baseline{Label: b.Label, Energy: b.Energy})
	}
	if ev := res.Evaluation; ev != nil {
		s.Accuracy = &report.Accuracy{
			LowBits:      ev.LowBits,
			FullColumns:  ev.FullColumns,
			MeanErrors:   ev.MeanErrors,
			MedianErrors: ev.MedianErrors,
			P90Errors:    ev.P90Errors,
		}
	}
	return s
}

func printRecord(rec *run.Record) {
	fmt.Printf("Run:         %s\n", rec.ID)
	fmt.Printf("Source:      %s (%d days x %d measures)\n", rec.Source, rec.Days, rec.Measures)
	fmt.Printf("Created:     %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Settings:    iters %d, bmax %d, cycles %d, T0 %g, K %g, width %d, restarts %d, seed %d\n",
		rec.Iterations, rec.MaxBit, rec.BitCycles, rec.T0, rec.K, rec.Width, rec.Restarts, rec.Seed)
	fmt.Printf("Dispersion:  %.6g -> %.6g\n", rec.InitialEnergy, rec.FinalEnergy)
	if rec.KeyMatch != nil {
		fmt.Printf("Key match:   %.1f%%\n", 100 * *rec.KeyMatch)
	}
	fmt.Printf("Fingerprint: %s\n", rec.Fingerprint)

	mask, err := run.DecodeMask(rec.Mask)
	if err == nil {
		fmt.Printf("Mask:        %d words, first %s\n", len(mask), firstWords(mask, 4))
	}
}

func firstWords(k series.Keystream, n int) string {
	if len(k) < n {
		n = len(k)
	}
	return run.EncodeMask(k[:n])
}
