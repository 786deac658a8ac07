package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tickerfetch/pkg/screener"
)

func main() {
	fmt.Println("📈 US Stock Ticker Update")
	fmt.Println("=========================")

	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: No .env file found, using environment variables")
	}

	logger := newLogger()
	defer logger.Sync()

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	client := screener.NewClient(&screener.ClientConfig{
		BaseURL:      os.Getenv("SCREENER_API_URL"),
		APIKey:       os.Getenv("SCREENER_API_KEY"),
		Timeout:      time.Duration(envInt("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
		MaxRetries:   envInt("MAX_RETRIES", 3),
		PageSize:     envInt("PAGE_SIZE", 1000),
		MaxRecords:   envInt("MAX_RECORDS", 0),
		AllowEmpty:   envBool("ALLOW_EMPTY"),
		InitialDelay: true,
	}, logger)

	fmt.Println("Fetching tickers from the screener...")
	startTime := time.Now()

	records, err := client.FetchTickers()
	if err != nil {
		logger.Error("fetch stage failed", zap.Error(err))
		fmt.Printf("❌ ERROR: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("📊 Fetched %d unique US tickers in %v\n", len(records), time.Since(startTime).Round(time.Millisecond))

	sorted := screener.SortByMarketCap(records)
	views := screener.BuildViews(sorted)

	outputDir := os.Getenv("OUTPUT_DIR")
	writer := screener.NewWriter(outputDir, logger)

	fmt.Printf("💾 Writing %d views...\n", len(views))
	written, failed := writer.WriteViews(views)

	if err := writer.WriteJSON(filepath.Join("tickers", "all.json"), sorted); err != nil {
		logger.Error("snapshot write failed", zap.Error(err))
		failed++
	} else {
		written++
	}

	fmt.Printf("   • Views written: %d\n", written)
	if failed > 0 {
		fmt.Printf("   • Views failed: %d\n", failed)
	}

	if written == 0 {
		fmt.Println("❌ Failed to save any output!")
		os.Exit(1)
	}

	fmt.Println("=========================")
	fmt.Println("✓ Update completed!")
}

func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		fmt.Printf("❌ ERROR: could not build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return false
	}
	return value
}
