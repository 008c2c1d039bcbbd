package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/rotaviva/stops-cli/internal/export"
	"github.com/rotaviva/stops-cli/internal/history"
	"github.com/rotaviva/stops-cli/internal/model"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect processed job history",
}

var jobsLimit int

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := history.Open(ctx, cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		jobs, err := store.ListJobs(ctx, jobsLimit)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			cmd.Println("no jobs recorded")
			return nil
		}

		for _, j := range jobs {
			cmd.Printf("%s  %s  %4d rows  ok=%d partial=%d not_found=%d  %s\n",
				j.ID,
				j.CreatedAt.Local().Format(time.DateTime),
				j.RowCount,
				j.Counts[model.StatusOK],
				j.Counts[model.StatusPartial],
				j.Counts[model.StatusNotFound],
				j.InputFile,
			)
		}
		return nil
	},
}

var jobsShowOutput string

var jobsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show one job, optionally re-exporting its results as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := history.Open(ctx, cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		job, err := store.GetJob(ctx, args[0])
		if err != nil {
			return err
		}
		if job == nil {
			return eris.Errorf("job not found: %s", args[0])
		}

		cmd.Printf("Job %s\n", job.ID)
		cmd.Printf("  input:    %s\n", job.InputFile)
		cmd.Printf("  created:  %s\n", job.CreatedAt.Local().Format(time.DateTime))
		cmd.Printf("  duration: %s\n", job.Duration.Round(time.Millisecond))
		cmd.Printf("  rows:     %d\n", job.RowCount)
		for st, n := range job.Counts {
			cmd.Printf("    %-12s %d\n", st, n)
		}

		if jobsShowOutput != "" {
			if err := export.WriteCSV(jobsShowOutput, job.Results); err != nil {
				return err
			}
			cmd.Printf("Wrote %s\n", jobsShowOutput)
		}
		return nil
	},
}

func init() {
	jobsListCmd.Flags().IntVar(&jobsLimit, "limit", 20, "max jobs to list")
	jobsShowCmd.Flags().StringVarP(&jobsShowOutput, "output", "o", "", "re-export results to this CSV path")
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsShowCmd)
	rootCmd.AddCommand(jobsCmd)
}
