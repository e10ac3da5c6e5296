// Package converter runs the per-task transform pipeline: decode, optional
// resize, format selection, metadata handling, encode, write, thumbnail.
package converter

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp" // register webp decoding

	"imageCompressor/models"
	"imageCompressor/naming"
)

const (
	DefaultThumbWidth  = 64
	DefaultThumbHeight = 48
)

type Converter struct {
	logger      *zap.Logger
	thumbWidth  int
	thumbHeight int
}

func NewConverter(logger *zap.Logger, thumbWidth, thumbHeight int) *Converter {
	if thumbWidth <= 0 {
		thumbWidth = DefaultThumbWidth
	}
	if thumbHeight <= 0 {
		thumbHeight = DefaultThumbHeight
	}
	return &Converter{
		logger:      logger,
		thumbWidth:  thumbWidth,
		thumbHeight: thumbHeight,
	}
}

// Process transforms one input file and returns its outcome. Every failure
// is reported through the result; Process never panics on bad image data
// and never returns partial results.
func (c *Converter) Process(spec models.TaskSpec) models.TaskResult {
	c.logger.Info("Processing task",
		zap.String("task_id", spec.ID),
		zap.String("input", spec.InputPath),
		zap.String("format", spec.OutputFormat),
	)

	// One read serves the before-size, the decode, and the Exif capture.
	data, err := os.ReadFile(spec.InputPath)
	if err != nil {
		return c.fail(spec, "decode", err)
	}
	beforeSize := int64(len(data))

	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return c.fail(spec, "decode", err)
	}

	// Capture the Exif blob before any transform discards it.
	var exif []byte
	if spec.PreserveMetadata {
		exif = exifPayload(data)
	}

	processed := c.resize(src, spec)

	target, targetExt, err := targetFormat(spec)
	if err != nil {
		return c.fail(spec, "convert", err)
	}

	// JPEG has no transparency support; encode an opaque RGB rendition.
	if target == formatJPEG && !processed.Opaque() {
		processed = flatten(processed)
	}

	encoded, err := c.encodeImage(processed, target, spec.Quality)
	if err != nil {
		return c.fail(spec, "encode", err)
	}

	if target == formatJPEG && exif != nil {
		encoded = withExif(encoded, exif)
	}

	stem := strings.TrimSuffix(filepath.Base(spec.InputPath), filepath.Ext(spec.InputPath))
	out, outPath, err := naming.Reserve(filepath.Join(spec.OutputDir, stem+targetExt))
	if err != nil {
		return c.fail(spec, "write", err)
	}
	if _, err := out.Write(encoded); err != nil {
		out.Close()
		return c.fail(spec, "write", err)
	}
	if err := out.Close(); err != nil {
		return c.fail(spec, "write", err)
	}

	afterSize := int64(len(encoded))
	if fi, err := os.Stat(outPath); err == nil {
		afterSize = fi.Size()
	}

	thumb := c.thumbnail(outPath)

	c.logger.Info("Task completed",
		zap.String("task_id", spec.ID),
		zap.String("output", outPath),
		zap.Int64("before_bytes", beforeSize),
		zap.Int64("after_bytes", afterSize),
	)

	return models.TaskResult{
		TaskID:     spec.ID,
		Status:     models.StatusDone,
		InputPath:  spec.InputPath,
		OutputPath: outPath,
		BeforeSize: beforeSize,
		AfterSize:  afterSize,
		Thumb:      thumb,
	}
}

// resize applies the Custom resize mode. An unspecified axis keeps the
// source dimension on that axis; no aspect-ratio correction is applied.
func (c *Converter) resize(src image.Image, spec models.TaskSpec) *image.NRGBA {
	if spec.ResizeMode != models.ResizeCustom || (spec.TargetWidth == nil && spec.TargetHeight == nil) {
		return imaging.Clone(src)
	}

	width := spec.TargetWidth
	height := spec.TargetHeight
	if width == nil {
		w := src.Bounds().Dx()
		width = &w
	}
	if height == nil {
		h := src.Bounds().Dy()
		height = &h
	}

	c.logger.Info("Resizing image",
		zap.Int("width", *width),
		zap.Int("height", *height),
	)

	return imaging.Resize(src, *width, *height, imaging.Lanczos)
}

// flatten forces every pixel opaque, matching what the JPEG encoder would
// otherwise do implicitly for alpha or palette sources.
func flatten(img *image.NRGBA) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xFF
	}
	return out
}

// thumbnail re-opens the written output and scales it to fit the preview
// box. A failure here degrades to a placeholder instead of failing the task.
func (c *Converter) thumbnail(path string) image.Image {
	img, err := imaging.Open(path)
	if err != nil {
		c.logger.Warn("Thumbnail generation failed, using placeholder",
			zap.String("path", path),
			zap.Error(err),
		)
		return c.placeholder()
	}
	return imaging.Fit(img, c.thumbWidth, c.thumbHeight, imaging.Lanczos)
}

func (c *Converter) placeholder() image.Image {
	return imaging.New(c.thumbWidth, c.thumbHeight, color.NRGBA{R: 220, G: 220, B: 220, A: 255})
}

func (c *Converter) fail(spec models.TaskSpec, stage string, err error) models.TaskResult {
	c.logger.Error("Task failed",
		zap.String("task_id", spec.ID),
		zap.String("input", spec.InputPath),
		zap.String("stage", stage),
		zap.Error(err),
	)
	return models.TaskResult{
		TaskID:    spec.ID,
		Status:    models.StatusError,
		InputPath: spec.InputPath,
		Err:       fmt.Sprintf("%s failed: %v", stage, err),
	}
}
