package validation

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"imageCompressor/models"
)

type FileType string

const (
	FileTypePNG  FileType = "png"
	FileTypeJPEG FileType = "jpeg"
	FileTypeGIF  FileType = "gif"
	FileTypeBMP  FileType = "bmp"
	FileTypeWEBP FileType = "webp"
)

var magicBytes = map[FileType][]byte{
	FileTypePNG:  {0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
	FileTypeJPEG: {0xFF, 0xD8, 0xFF},
	FileTypeGIF:  {0x47, 0x49, 0x46, 0x38},
	FileTypeBMP:  {0x42, 0x4D},
}

// DetectFileType sniffs the image type from the leading bytes of r. WEBP is
// a RIFF container, so it is matched on both the RIFF header and the WEBP
// fourcc rather than a single prefix.
func DetectFileType(r io.Reader) (FileType, error) {
	buffer := make([]byte, 512)
	n, err := r.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}
	buffer = buffer[:n]

	for fileType, signature := range magicBytes {
		if bytes.HasPrefix(buffer, signature) {
			return fileType, nil
		}
	}

	if len(buffer) >= 12 && bytes.Equal(buffer[0:4], []byte("RIFF")) && bytes.Equal(buffer[8:12], []byte("WEBP")) {
		return FileTypeWEBP, nil
	}

	return "", ErrInvalidFileType
}

// IsAllowedExtension reports whether path has one of the input extensions
// the batch accepts.
func IsAllowedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	allowed := map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
		".bmp":  true,
	}
	return allowed[ext]
}

// ValidateQuality enforces the 1-100 range before any spec is built; the
// pipeline assumes a pre-validated value.
func ValidateQuality(quality int) error {
	if quality < 1 || quality > 100 {
		return ErrInvalidQuality
	}
	return nil
}

// ValidateBatch checks the batch-wide configuration and the input list.
// Corrupt file content is deliberately not checked here: a file that fails
// to decode must surface as a per-task error, not reject the whole batch.
func ValidateBatch(inputs []string, cfg models.BatchConfig) error {
	if len(inputs) == 0 {
		return ErrNoInputs
	}
	if cfg.OutputDir == "" {
		return ErrNoOutputDir
	}
	if err := ValidateQuality(cfg.Quality); err != nil {
		return err
	}
	if cfg.OutputFormat != models.FormatSameAsInput {
		switch strings.ToLower(cfg.OutputFormat) {
		case "jpg", "jpeg", "png", "webp", "bmp":
		default:
			return fmt.Errorf("%w: %s", ErrUnsupportedFormat, cfg.OutputFormat)
		}
	}
	for _, path := range inputs {
		if !IsAllowedExtension(path) {
			return fmt.Errorf("%w: %s", ErrInvalidFileType, filepath.Base(path))
		}
	}
	return nil
}
