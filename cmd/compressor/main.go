package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"imageCompressor/config"
	"imageCompressor/models"
	"imageCompressor/service"
)

func main() {
	outDir := flag.String("out", "", "output directory (required)")
	quality := flag.Int("quality", 70, "quality 1-100, applied to lossy formats")
	width := flag.Int("width", 0, "target width; 0 keeps the source width")
	height := flag.Int("height", 0, "target height; 0 keeps the source height")
	format := flag.String("format", models.FormatSameAsInput, "output format: same, jpg, jpeg, png, webp or bmp")
	keepExif := flag.Bool("keep-exif", true, "preserve embedded Exif metadata")
	workers := flag.Int("workers", 0, "worker count; 0 uses WORKER_COUNT or the default")
	flag.Parse()

	inputs := flag.Args()
	if len(inputs) == 0 || *outDir == "" {
		fmt.Fprintln(os.Stderr, "Usage: compressor -out <dir> [options] <image files...>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := config.Load()
	if *workers > 0 {
		cfg.WorkerCount = *workers
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	batchCfg := models.BatchConfig{
		OutputDir:        *outDir,
		Quality:          *quality,
		ResizeMode:       models.ResizeOriginal,
		OutputFormat:     *format,
		PreserveMetadata: *keepExif,
	}
	if *width > 0 || *height > 0 {
		batchCfg.ResizeMode = models.ResizeCustom
		if *width > 0 {
			batchCfg.TargetWidth = width
		}
		if *height > 0 {
			batchCfg.TargetHeight = height
		}
	}

	svc := service.NewBatchService(cfg, logger)

	summary, err := svc.Run(context.Background(), inputs, batchCfg, service.Callbacks{
		OnResult: printResult,
		OnComplete: func(s models.BatchSummary) {
			fmt.Printf("\nBatch complete: %d done, %d errored | before %s -> after %s (saved %s)\n",
				s.Done, s.Errored,
				models.HumanKB(s.TotalBefore), models.HumanKB(s.TotalAfter),
				models.HumanKB(s.SpaceSaved()))
		},
	})
	if err != nil {
		logger.Fatal("Batch rejected", zap.Error(err))
	}

	if summary.Errored > 0 {
		os.Exit(1)
	}
}

func newLogger(level string) *zap.Logger {
	zapCfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		zapCfg.Level = lvl
	}
	logger, err := zapCfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func printResult(res models.TaskResult) {
	name := filepath.Base(res.InputPath)
	if res.Status == models.StatusDone {
		fmt.Printf("%-32s %12s -> %12s  %s\n",
			name, models.HumanKB(res.BeforeSize), models.HumanKB(res.AfterSize), filepath.Base(res.OutputPath))
		return
	}
	fmt.Printf("%-32s ERROR: %s\n", name, res.Err)
}
