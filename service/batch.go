// Package service assembles a batch run: validate inputs, build immutable
// task specs, dispatch them to the pool, and drain outcomes through the
// aggregator until the terminal event.
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"imageCompressor/config"
	"imageCompressor/converter"
	"imageCompressor/models"
	"imageCompressor/pool"
	"imageCompressor/progress"
	"imageCompressor/validation"
)

// Callbacks carries the presentation hooks invoked by the aggregator's
// consumer loop. Both are optional.
type Callbacks struct {
	OnResult   func(models.TaskResult)
	OnComplete func(models.BatchSummary)
}

type BatchService struct {
	converter *converter.Converter
	pool      *pool.WorkerPool
	logger    *zap.Logger
}

func NewBatchService(cfg *config.Config, logger *zap.Logger) *BatchService {
	return &BatchService{
		converter: converter.NewConverter(logger, cfg.ThumbWidth, cfg.ThumbHeight),
		pool:      pool.NewWorkerPool(cfg.WorkerCount, logger),
		logger:    logger,
	}
}

// Run processes every input file with the batch-wide parameters and blocks
// until the terminal event. Once submitted, a batch always runs to
// completion; ctx is consulted only before submission.
func (s *BatchService) Run(ctx context.Context, inputs []string, cfg models.BatchConfig, callbacks Callbacks) (models.BatchSummary, error) {
	if err := validation.ValidateBatch(inputs, cfg); err != nil {
		return models.BatchSummary{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.BatchSummary{}, err
	}

	inputs = dedupe(inputs)

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return models.BatchSummary{}, fmt.Errorf("create output directory: %w", err)
	}

	specs := s.buildSpecs(inputs, cfg)

	s.logger.Info("Batch submitted",
		zap.Int("tasks", len(specs)),
		zap.String("output_dir", cfg.OutputDir),
		zap.Int("quality", cfg.Quality),
		zap.String("format", cfg.OutputFormat),
		zap.Bool("preserve_metadata", cfg.PreserveMetadata),
	)

	aggregator := progress.NewAggregator(specs, s.logger)
	aggregator.SetResultCallback(callbacks.OnResult)
	aggregator.SetCompleteCallback(callbacks.OnComplete)

	results := s.pool.Run(specs, s.converter.Process)
	summary := aggregator.Consume(results)

	return summary, nil
}

// buildSpecs freezes the batch configuration into one immutable spec per
// input file, each with a batch-unique identifier.
func (s *BatchService) buildSpecs(inputs []string, cfg models.BatchConfig) []models.TaskSpec {
	specs := make([]models.TaskSpec, 0, len(inputs))
	for _, path := range inputs {
		s.sniffInput(path)
		specs = append(specs, models.TaskSpec{
			ID:               uuid.New().String(),
			InputPath:        path,
			OutputDir:        cfg.OutputDir,
			Quality:          cfg.Quality,
			ResizeMode:       cfg.ResizeMode,
			TargetWidth:      cfg.TargetWidth,
			TargetHeight:     cfg.TargetHeight,
			OutputFormat:     cfg.OutputFormat,
			PreserveMetadata: cfg.PreserveMetadata,
		})
	}
	return specs
}

// sniffInput warns when a file's content does not look like a supported
// image. The file is still submitted: content failures must surface as
// per-task errors, never reject the whole batch.
func (s *BatchService) sniffInput(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	if _, err := validation.DetectFileType(f); err != nil {
		s.logger.Warn("Input does not look like a supported image",
			zap.String("path", filepath.Base(path)),
		)
	}
}

func dedupe(inputs []string) []string {
	seen := make(map[string]bool, len(inputs))
	out := make([]string, 0, len(inputs))
	for _, path := range inputs {
		if seen[path] {
			continue
		}
		seen[path] = true
		out = append(out, path)
	}
	return out
}
