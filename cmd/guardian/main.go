package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/iscp-sec/guardian/internal/batch"
	"github.com/iscp-sec/guardian/internal/config"
	"github.com/iscp-sec/guardian/internal/engine"
	"github.com/iscp-sec/guardian/internal/storage"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	var (
		inPath     = flag.String("in", "", "input CSV path (local file or s3://bucket/key)")
		outPath    = flag.String("out", "redacted_output.csv", "output CSV path (local file or s3://bucket/key)")
		configPath = flag.String("config", "", "optional YAML config path")
		workers    = flag.Int("workers", 0, "scrub worker count (0 = one per CPU)")
	)
	flag.Parse()

	logger := mustBuildLogger(envOrDefault("GUARDIAN_LOG_LEVEL", "info"))
	defer logger.Sync() //nolint:errcheck // best-effort flush

	if *inPath == "" {
		logger.Fatal("flag -in is required")
	}

	fileCfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	scrubCfg := engine.DefaultConfig().Apply(fileCfg.Scrub)

	nWorkers := *workers
	if nWorkers == 0 {
		nWorkers = fileCfg.Workers
	}
	if nWorkers == 0 {
		nWorkers = runtime.NumCPU()
	}

	// Audit events — ClickHouse when configured, otherwise none
	var events storage.EventWriter
	if dsn := os.Getenv("CLICKHOUSE_DSN"); dsn != "" {
		chWriter, err := storage.NewClickHouseWriter(dsn, logger)
		if err != nil {
			logger.Warn("clickhouse connection failed, audit events disabled", zap.Error(err))
		} else {
			events = chWriter
			defer events.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Object store for s3:// paths
	var objects *batch.ObjectStore
	if batch.IsObjectPath(*inPath) || batch.IsObjectPath(*outPath) {
		objects, err = batch.NewObjectStore(batch.ObjectConfig{
			Endpoint:  os.Getenv("GUARDIAN_S3_ENDPOINT"),
			AccessKey: os.Getenv("GUARDIAN_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("GUARDIAN_S3_SECRET_KEY"),
			UseSSL:    os.Getenv("GUARDIAN_S3_USE_SSL") == "true",
		})
		if err != nil {
			logger.Fatal("failed to connect to object store", zap.Error(err))
		}
	}

	// Input
	var in io.ReadCloser
	if batch.IsObjectPath(*inPath) {
		in, err = objects.Open(ctx, *inPath)
	} else {
		in, err = os.Open(*inPath)
	}
	if err != nil {
		logger.Fatal("failed to open input", zap.String("path", *inPath), zap.Error(err))
	}
	defer in.Close()

	reader, err := batch.NewCSVReader(in)
	if err != nil {
		logger.Fatal("invalid input", zap.String("path", *inPath), zap.Error(err))
	}

	// Output — buffered for object paths, streamed for local files
	var (
		outFile *os.File
		outBuf  bytes.Buffer
		sink    io.Writer
	)
	if batch.IsObjectPath(*outPath) {
		sink = &outBuf
	} else {
		outFile, err = os.Create(*outPath)
		if err != nil {
			logger.Fatal("failed to create output", zap.String("path", *outPath), zap.Error(err))
		}
		defer outFile.Close()
		sink = outFile
	}

	writer, err := batch.NewCSVWriter(sink)
	if err != nil {
		logger.Fatal("failed to write output header", zap.Error(err))
	}

	scrubber := engine.NewScrubber(scrubCfg)
	runner := batch.NewRunner(scrubber, nWorkers, events, logger)

	logger.Info("starting scrub run",
		zap.String("run_id", runner.RunID()),
		zap.String("in", *inPath),
		zap.String("out", *outPath),
		zap.Int("workers", nWorkers),
	)
	start := time.Now()

	stats, runErr := runner.Run(ctx, reader.Next, func(out batch.Output) error {
		return writer.Write(out.Row.RecordID, out.RedactedJSON, out.Result.IsPII)
	})
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Fatal("scrub run failed", zap.Error(runErr))
	}

	if err := writer.Flush(); err != nil {
		logger.Fatal("failed to flush output", zap.Error(err))
	}
	if batch.IsObjectPath(*outPath) {
		if err := objects.Put(context.Background(), *outPath, outBuf.Bytes()); err != nil {
			logger.Fatal("failed to upload output", zap.String("path", *outPath), zap.Error(err))
		}
	}

	logger.Info("scrub run finished",
		zap.String("run_id", runner.RunID()),
		zap.Int("records", stats.Records),
		zap.Int("pii", stats.PII),
		zap.Duration("duration", time.Since(start)),
		zap.Bool("cancelled", errors.Is(runErr, context.Canceled)),
	)
}

func mustBuildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	return logger
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
