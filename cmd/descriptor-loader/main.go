// Package main is the entry point for the descriptor loader CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/axonops/protodesc-core/internal/cache"
	"github.com/axonops/protodesc-core/internal/config"
	"github.com/axonops/protodesc-core/internal/descriptor"
	"github.com/axonops/protodesc-core/internal/metrics"
	"github.com/axonops/protodesc-core/internal/store"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "descriptor-loader",
		Short: "Loads and validates wire-encoded FileDescriptorSet payloads",
		Long:  "A command-line tool that ingests a wire-encoded FileDescriptorSet and builds its in-memory definition graph.",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")

	loadCmd := &cobra.Command{
		Use:   "load <descriptor-set-file>",
		Short: "Parse a FileDescriptorSet and optionally persist the ingestion record",
		Args:  cobra.ExactArgs(1),
		RunE:  runLoad,
	}

	validateCmd := &cobra.Command{
		Use:   "validate <descriptor-set-file>",
		Short: "Parse a FileDescriptorSet and report success or failure without persisting",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("descriptor-loader %s (commit: %s, built: %s)\n", version, commit, buildDate)
			return nil
		},
	}

	rootCmd.AddCommand(loadCmd, validateCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg *config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var out *lumberjack.Logger
	if cfg.File != "" {
		out = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if out != nil {
		handler = slog.NewJSONHandler(out, opts)
	} else if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(&cfg.Logging)

	requestID := uuid.New().String()
	logger.Info("starting ingestion", slog.String("request_id", requestID), slog.String("file", args[0]))

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read descriptor set: %w", err)
	}

	m := metrics.New()
	defCache := cache.NewDefCache(cfg.Cache.Size, time.Duration(cfg.Cache.TTLSeconds)*time.Second)

	fingerprint := descriptor.Fingerprint(data)
	if cached, ok := defCache.Get(fingerprint); ok {
		m.RecordCacheAccess("defs", true)
		logger.Info("served from cache", slog.String("fingerprint", fingerprint))
		return printDefs(cached.([]descriptor.Definition))
	}
	m.RecordCacheAccess("defs", false)

	start := time.Now()
	defs, parseErr := descriptor.Parse(data, requestID)
	elapsed := time.Since(start)
	m.RecordIngest(elapsed, cfg.Ingest.MaxNestingDepth, parseErr)

	rec := &store.Record{
		Fingerprint: fingerprint,
		RawBytes:    data,
		CreatedAt:   time.Now(),
	}
	if parseErr != nil {
		rec.Status = store.StatusFailed
		rec.ErrorMessage = parseErr.Error()
		logger.Error("ingestion failed", slog.String("request_id", requestID), slog.String("error", parseErr.Error()))
	} else {
		rec.Status = store.StatusSucceeded
		rec.MessageCount, rec.EnumCount = countDefs(defs)
		defCache.Set(fingerprint, defs)
		m.UpdateDefsLoaded(float64(rec.MessageCount), float64(rec.EnumCount))
		logger.Info("ingestion succeeded",
			slog.String("request_id", requestID),
			slog.Int("messages", rec.MessageCount),
			slog.Int("enums", rec.EnumCount),
		)
	}

	backendCfg := store.BackendConfig{
		PostgreSQL: store.PostgresConfig{
			Host: cfg.Storage.PostgreSQL.Host, Port: cfg.Storage.PostgreSQL.Port,
			Database: cfg.Storage.PostgreSQL.Database, User: cfg.Storage.PostgreSQL.User,
			Password: cfg.Storage.PostgreSQL.Password,
			SSLMode: cfg.Storage.PostgreSQL.SSLMode, MaxOpenConns: cfg.Storage.PostgreSQL.MaxOpenConns,
		},
		MySQL: store.MySQLConfig{
			Host: cfg.Storage.MySQL.Host, Port: cfg.Storage.MySQL.Port,
			Database: cfg.Storage.MySQL.Database, User: cfg.Storage.MySQL.User,
			Password: cfg.Storage.MySQL.Password,
			TLS: cfg.Storage.MySQL.TLS, MaxOpenConns: cfg.Storage.MySQL.MaxOpenConns,
		},
	}
	s, err := store.New(cfg.Storage.Type, backendCfg)
	if err != nil {
		return fmt.Errorf("create storage backend: %w", err)
	}
	defer s.Close()

	storeStart := time.Now()
	storeErr := s.Put(context.Background(), rec)
	m.RecordStorageOperation(cfg.Storage.Type, "put", time.Since(storeStart), storeErr)
	if storeErr != nil {
		return fmt.Errorf("persist ingestion record: %w", storeErr)
	}

	if parseErr != nil {
		return parseErr
	}
	return printDefs(defs)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(&cfg.Logging)

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read descriptor set: %w", err)
	}

	requestID := uuid.New().String()
	defs, err := descriptor.Parse(data, requestID)
	if err != nil {
		logger.Error("validation failed", slog.String("error", err.Error()))
		return err
	}

	messages, enums := countDefs(defs)
	logger.Info("validation succeeded", slog.Int("messages", messages), slog.Int("enums", enums))
	fmt.Printf("OK: %d message definitions, %d enum definitions\n", messages, enums)
	return nil
}

func countDefs(defs []descriptor.Definition) (messages, enums int) {
	for _, d := range defs {
		switch d.(type) {
		case *descriptor.MessageDef:
			messages++
		case *descriptor.EnumDef:
			enums++
		}
	}
	return messages, enums
}

func printDefs(defs []descriptor.Definition) error {
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.FullName()
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(names)
}
