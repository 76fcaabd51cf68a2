package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/payment-verifier/constants"
	"github.com/joseph-ayodele/payment-verifier/internal/app"
	"github.com/joseph-ayodele/payment-verifier/internal/async"
	"github.com/joseph-ayodele/payment-verifier/internal/common"
	"github.com/joseph-ayodele/payment-verifier/internal/entity"
	"github.com/joseph-ayodele/payment-verifier/internal/export"
)

var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		out        string
		workers    int
		jobTimeout time.Duration
	)
	cmd := &cobra.Command{
		Use:     "verify-batch [csv]",
		Short:   "Verify a CSV of provider,transaction_id,account rows and write an XLSX report",
		Version: Version,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".xlsx"
			}
			return run(cmd.Context(), args[0], out, workers, jobTimeout)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output XLSX path (defaults to the CSV path with .xlsx)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 2, "concurrent verifications")
	cmd.Flags().DurationVar(&jobTimeout, "job-timeout", 5*time.Minute, "per-row verification timeout")

	return cmd
}

func run(ctx context.Context, in, out string, workers int, jobTimeout time.Duration) error {
	cfg, err := common.LoadConfig()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		return err
	}

	f, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("open %s: %w", in, err)
	}
	jobs, err := async.ReadJobs(f)
	_ = f.Close()
	if err != nil {
		return err
	}
	logger.Info("batch.start", "file", in, "rows", len(jobs), "workers", workers)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	services := app.New(cfg, logger)
	var results []async.Result
	pool := async.NewWorkerPool(
		func(ctx context.Context, job async.Job) entity.VerificationResult {
			v, ok := services.Verifier(job.Provider)
			if !ok {
				return entity.VerificationResult{TransactionID: job.Request.TransactionID, Status: constants.StatusInvalidInput.String()}
			}
			return v.Verify(common.WithRequestID(ctx, job.TraceID), job.Request)
		},
		func(r async.Result) { results = append(results, r) },
		logger,
		async.WithWorkers(workers),
		async.WithJobTimeout(jobTimeout),
	)

	for _, job := range jobs {
		if err := pool.Enqueue(ctx, job); err != nil {
			logger.Warn("batch.enqueue.stopped", "error", err)
			break
		}
	}
	if err := pool.Shutdown(ctx); err != nil {
		return fmt.Errorf("batch interrupted: %w", err)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Job.Line < results[j].Job.Line })
	rows := make([]export.Row, 0, len(results))
	for _, r := range results {
		rows = append(rows, export.Row{Provider: r.Job.Provider, Result: r.Result})
	}

	b, err := export.NewService(logger).ResultsXLSX(ctx, rows)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	logger.Info("batch.done", "out", out, "rows", len(rows))
	return nil
}
