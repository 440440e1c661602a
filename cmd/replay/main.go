package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/coffersTech/auditreplay/internal/config"
	"github.com/coffersTech/auditreplay/internal/engine"
	"github.com/coffersTech/auditreplay/internal/storage"
)

var (
	fields []string

	rootCmd = &cobra.Command{
		Use:   "replay [flags] <source> <date>",
		Short: "Prints the state of one or more top level fields at a process date",
		Long: `Replays an append-only audit log to reconstruct what the named fields
looked like at the given process date. The source is either a local
directory of time-bucketed .jsonl.gz files or a gs://bucket/prefix.`,
		Args: cobra.ExactArgs(2),
		RunE: runReplay,
	}
)

func init() {
	rootCmd.Flags().StringArrayVar(&fields, "field", nil, "audit field to check against (repeatable)")
	rootCmd.MarkFlagRequired("field")
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	ctx := cmd.Context()
	backend, err := storage.Open(ctx, args[0], cfg.FileSuffix, cfg.GCSCredentials)
	if err != nil {
		return err
	}
	defer backend.Close()

	result, err := engine.NewReplayer(backend, cfg.FileSuffix, logger).Replay(ctx, fields, args[1])
	if err != nil {
		return err
	}

	out, err := json.Marshal(result)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
