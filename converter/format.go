package converter

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"imageCompressor/models"
)

// format is a normalized encoder identity; "jpg" and "jpeg" map to one.
type format string

const (
	formatJPEG format = "jpeg"
	formatPNG  format = "png"
	formatWEBP format = "webp"
	formatBMP  format = "bmp"
)

func normalizeTag(tag string) (format, error) {
	switch strings.ToLower(tag) {
	case "jpg", "jpeg":
		return formatJPEG, nil
	case "png":
		return formatPNG, nil
	case "webp":
		return formatWEBP, nil
	case "bmp":
		return formatBMP, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", tag)
	}
}

func formatForExt(ext string) (format, error) {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return formatJPEG, nil
	case ".png":
		return formatPNG, nil
	case ".webp":
		return formatWEBP, nil
	case ".bmp":
		return formatBMP, nil
	default:
		return "", fmt.Errorf("cannot infer format from extension %q", ext)
	}
}

// targetFormat resolves the encoder identity and the output extension for a
// spec. An explicit tag forces both; FormatSameAsInput infers them from the
// input file's extension.
func targetFormat(spec models.TaskSpec) (format, string, error) {
	if spec.OutputFormat == models.FormatSameAsInput {
		ext := strings.ToLower(filepath.Ext(spec.InputPath))
		f, err := formatForExt(ext)
		return f, ext, err
	}

	tag := strings.ToLower(spec.OutputFormat)
	f, err := normalizeTag(tag)
	if err != nil {
		return "", "", err
	}
	return f, "." + tag, nil
}

// encodeImage encodes img into the target format. Encoders always optimize
// for size; the quality value is applied only where the format is lossy.
func (c *Converter) encodeImage(img *image.NRGBA, f format, quality int) ([]byte, error) {
	buf := new(bytes.Buffer)
	var err error

	switch f {
	case formatJPEG:
		err = imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
	case formatPNG:
		err = imaging.Encode(buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	case formatWEBP:
		err = webp.Encode(buf, img, &webp.Options{Quality: float32(quality)})
	case formatBMP:
		err = imaging.Encode(buf, img, imaging.BMP)
	default:
		err = fmt.Errorf("unsupported output format: %s", f)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
