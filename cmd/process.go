package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rotaviva/stops-cli/internal/export"
	"github.com/rotaviva/stops-cli/internal/ingest"
	"github.com/rotaviva/stops-cli/internal/model"
)

var (
	processOutput string
	processSheet  string
	processNoSave bool
)

var processCmd = &cobra.Command{
	Use:   "process <input.xlsx>",
	Short: "Resolve a delivery spreadsheet into geocoded stops",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		input := args[0]
		rows, err := ingest.ReadXLSX(input, ingest.Options{SheetName: processSheet})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return eris.New("no data rows found in input")
		}
		zap.L().Info("process: input loaded",
			zap.String("file", input),
			zap.Int("rows", len(rows)))

		bar := progressbar.NewOptions(len(rows),
			progressbar.OptionSetDescription("Resolving"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		start := time.Now()
		results := env.Resolver.ResolveAll(ctx, rows, func() { _ = bar.Add(1) })
		_ = bar.Finish()
		elapsed := time.Since(start)

		if ctx.Err() != nil {
			return eris.Wrap(ctx.Err(), "process: interrupted")
		}

		output := processOutput
		if output == "" {
			output = strings.TrimSuffix(input, filepath.Ext(input)) + "_stops.csv"
		}
		if err := export.WriteCSV(output, results); err != nil {
			return err
		}

		if !processNoSave {
			job, err := env.History.SaveJob(ctx, filepath.Base(input), results, elapsed)
			if err != nil {
				return err
			}
			zap.L().Info("process: job saved", zap.String("id", job.ID))
		}

		printSummary(cmd, results, output, elapsed)
		return nil
	},
}

func init() {
	processCmd.Flags().StringVarP(&processOutput, "output", "o", "", "output CSV path (default: <input>_stops.csv)")
	processCmd.Flags().StringVar(&processSheet, "sheet", "", "sheet name (default: first sheet)")
	processCmd.Flags().BoolVar(&processNoSave, "no-save", false, "skip saving the job to history")
	rootCmd.AddCommand(processCmd)
}

func printSummary(cmd *cobra.Command, results []model.ResolvedStop, output string, elapsed time.Duration) {
	counts := make(map[model.Status]int, 4)
	for _, r := range results {
		counts[r.Status]++
	}
	cmd.Printf("Processed %d rows in %s\n", len(results), elapsed.Round(time.Millisecond))
	for _, st := range []model.Status{model.StatusOK, model.StatusPartial, model.StatusNotFound, model.StatusCondominium} {
		if counts[st] > 0 {
			cmd.Printf("  %-12s %d\n", st, counts[st])
		}
	}
	cmd.Printf("Wrote %s\n", output)
}
