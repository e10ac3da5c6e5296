package service

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"imageCompressor/config"
	"imageCompressor/models"
	"imageCompressor/validation"
)

func createTestImage(t *testing.T, width, height int, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}
	defer file.Close()

	if err := jpeg.Encode(file, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
}

func newTestService(t *testing.T) *BatchService {
	t.Helper()
	return NewBatchService(&config.Config{WorkerCount: 2, ThumbWidth: 64, ThumbHeight: 48}, zaptest.NewLogger(t))
}

func testConfig(outDir string) models.BatchConfig {
	return models.BatchConfig{
		OutputDir:    outDir,
		Quality:      70,
		ResizeMode:   models.ResizeOriginal,
		OutputFormat: models.FormatSameAsInput,
	}
}

func TestRun_BatchIsolatesCorruptFile(t *testing.T) {
	svc := newTestService(t)
	tmpDir := t.TempDir()
	outDir := filepath.Join(tmpDir, "out")

	good1 := filepath.Join(tmpDir, "one.jpg")
	corrupt := filepath.Join(tmpDir, "two.jpg")
	good2 := filepath.Join(tmpDir, "three.jpg")
	createTestImage(t, 100, 100, good1)
	createTestImage(t, 100, 100, good2)
	if err := os.WriteFile(corrupt, []byte("broken"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	var results []models.TaskResult
	var completes int
	summary, err := svc.Run(context.Background(), []string{good1, corrupt, good2}, testConfig(outDir), Callbacks{
		OnResult:   func(res models.TaskResult) { results = append(results, res) },
		OnComplete: func(models.BatchSummary) { completes++ },
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if completes != 1 {
		t.Errorf("Expected exactly one batch-complete event, got %d", completes)
	}
	if summary.Done != 2 || summary.Errored != 1 {
		t.Errorf("Expected 2 done and 1 errored, got %+v", summary)
	}

	for _, res := range results {
		if res.InputPath == corrupt {
			if res.Status != models.StatusError {
				t.Errorf("Expected the corrupt file to error, got %s", res.Status)
			}
			if res.Err == "" {
				t.Error("Expected a non-empty error message for the corrupt file")
			}
		} else if res.Status != models.StatusDone {
			t.Errorf("Expected %s to succeed, got %s: %s", res.InputPath, res.Status, res.Err)
		}
	}
}

func TestRun_DistinctTaskIdentifiers(t *testing.T) {
	svc := newTestService(t)
	tmpDir := t.TempDir()
	outDir := filepath.Join(tmpDir, "out")

	var inputs []string
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"} {
		path := filepath.Join(tmpDir, name)
		createTestImage(t, 50, 50, path)
		inputs = append(inputs, path)
	}

	seen := make(map[string]bool)
	summary, err := svc.Run(context.Background(), inputs, testConfig(outDir), Callbacks{
		OnResult: func(res models.TaskResult) {
			if seen[res.TaskID] {
				t.Errorf("Duplicate task identifier %s", res.TaskID)
			}
			seen[res.TaskID] = true
		},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(seen) != 4 || summary.Submitted != 4 {
		t.Errorf("Expected 4 distinct identifiers, got %d (summary %+v)", len(seen), summary)
	}
}

func TestRun_InvalidQualityNeverReachesPipeline(t *testing.T) {
	svc := newTestService(t)
	tmpDir := t.TempDir()
	outDir := filepath.Join(tmpDir, "out")
	input := filepath.Join(tmpDir, "a.jpg")
	createTestImage(t, 50, 50, input)

	for _, quality := range []int{0, -5, 101} {
		cfg := testConfig(outDir)
		cfg.Quality = quality

		called := false
		_, err := svc.Run(context.Background(), []string{input}, cfg, Callbacks{
			OnResult: func(models.TaskResult) { called = true },
		})
		if err == nil {
			t.Errorf("Expected quality %d to be rejected", quality)
		}
		if called {
			t.Errorf("Quality %d reached the pipeline", quality)
		}
	}

	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Error("Rejected batch must not create the output directory")
	}
}

func TestRun_DuplicateInputsProcessedOnce(t *testing.T) {
	svc := newTestService(t)
	tmpDir := t.TempDir()
	outDir := filepath.Join(tmpDir, "out")
	input := filepath.Join(tmpDir, "a.jpg")
	createTestImage(t, 50, 50, input)

	var results int
	summary, err := svc.Run(context.Background(), []string{input, input, input}, testConfig(outDir), Callbacks{
		OnResult: func(models.TaskResult) { results++ },
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if results != 1 || summary.Submitted != 1 {
		t.Errorf("Expected the duplicate path to collapse to one task, got %d results (summary %+v)", results, summary)
	}
}

func TestRun_SameBasenameNeverOverwrites(t *testing.T) {
	svc := newTestService(t)
	tmpDir := t.TempDir()
	outDir := filepath.Join(tmpDir, "out")

	dirA := filepath.Join(tmpDir, "a")
	dirB := filepath.Join(tmpDir, "b")
	var inputs []string
	for _, d := range []string{dirA, dirB} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		path := filepath.Join(d, "photo.jpg")
		createTestImage(t, 50, 50, path)
		inputs = append(inputs, path)
	}

	summary, err := svc.Run(context.Background(), inputs, testConfig(outDir), Callbacks{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Done != 2 {
		t.Fatalf("Expected both files done, got %+v", summary)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("Failed to read output dir: %v", err)
	}
	names := make(map[string]bool)
	for _, e := range entries {
		names[e.Name()] = true
	}
	if !names["photo.jpg"] || !names["photo_1.jpg"] {
		t.Errorf("Expected photo.jpg and photo_1.jpg, got %v", names)
	}
}

func TestRun_RejectsUnsupportedExtension(t *testing.T) {
	svc := newTestService(t)
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "notes.txt")
	if err := os.WriteFile(input, []byte("text"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	_, err := svc.Run(context.Background(), []string{input}, testConfig(filepath.Join(tmpDir, "out")), Callbacks{})
	if err == nil {
		t.Fatal("Expected an error for a non-image extension")
	}
	if !strings.Contains(err.Error(), validation.ErrInvalidFileType.Error()) {
		t.Errorf("Expected an invalid file type error, got: %v", err)
	}
}

func TestRun_EmptyBatchRejected(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Run(context.Background(), nil, testConfig(t.TempDir()), Callbacks{})
	if err == nil {
		t.Fatal("Expected an error for an empty batch")
	}
}
