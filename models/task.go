package models

import (
	"image"
)

type TaskStatus string

const (
	StatusQueued TaskStatus = "queued"
	StatusDone   TaskStatus = "done"
	StatusError  TaskStatus = "error"
)

type ResizeMode string

const (
	ResizeOriginal ResizeMode = "original"
	ResizeCustom   ResizeMode = "custom"
)

// FormatSameAsInput keeps the input file's format and extension.
const FormatSameAsInput = "same"

// TaskSpec describes one file to transform. It is built once per input
// before submission and never mutated afterwards; workers share it by value.
type TaskSpec struct {
	ID               string
	InputPath        string
	OutputDir        string
	Quality          int // 1-100, validated before submission
	ResizeMode       ResizeMode
	TargetWidth      *int // nil means keep the source width
	TargetHeight     *int // nil means keep the source height
	OutputFormat     string // FormatSameAsInput or jpg/jpeg/png/webp/bmp
	PreserveMetadata bool
}

// TaskResult is the outcome of processing one TaskSpec. Exactly one result
// is produced per submitted spec. OutputPath, BeforeSize, AfterSize and
// Thumb are set only for StatusDone; Err only for StatusError.
type TaskResult struct {
	TaskID     string
	Status     TaskStatus
	InputPath  string
	OutputPath string
	BeforeSize int64
	AfterSize  int64
	Thumb      image.Image
	Err        string
}

// BatchConfig carries the batch-wide parameters shared by every task.
type BatchConfig struct {
	OutputDir        string
	Quality          int
	ResizeMode       ResizeMode
	TargetWidth      *int
	TargetHeight     *int
	OutputFormat     string
	PreserveMetadata bool
}

// BatchSummary is delivered with the terminal batch-complete event.
type BatchSummary struct {
	Submitted   int
	Done        int
	Errored     int
	TotalBefore int64
	TotalAfter  int64
}

// SpaceSaved returns the aggregate byte difference between inputs and
// outputs. Positive means outputs are smaller.
func (s BatchSummary) SpaceSaved() int64 {
	return s.TotalBefore - s.TotalAfter
}
