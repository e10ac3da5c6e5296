package validation

import "errors"

var (
	ErrInvalidFileType   = errors.New("invalid file type")
	ErrInvalidQuality    = errors.New("quality must be an integer between 1 and 100")
	ErrUnsupportedFormat = errors.New("unsupported output format")
	ErrNoInputs          = errors.New("no input files")
	ErrNoOutputDir       = errors.New("output directory is required")
)
