package imageintake

import (
	"fmt"
	"slices"

	"github.com/dustin/go-humanize"
)

// Limits bound what the pipeline accepts.
type Limits struct {
	MaxBytes int64    `mapstructure:"max_bytes" yaml:"max_bytes"`
	MinBytes int64    `mapstructure:"min_bytes" yaml:"min_bytes"`
	Allowed  []string `mapstructure:"allowed" yaml:"allowed"`
}

// DefaultLimits accepts JPEG, PNG, GIF and WebP between 100 bytes and 5 MB.
func DefaultLimits() Limits {
	return Limits{
		MaxBytes: 5 * 1024 * 1024,
		MinBytes: 100,
		Allowed:  []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
	}
}

// Reason names why a file was rejected.
type Reason string

const (
	ReasonUnsupportedType Reason = "unsupported-type"
	ReasonTooLarge        Reason = "too-large"
	ReasonTooSmall        Reason = "too-small"
)

// RejectedError reports a file that failed validation.
type RejectedError struct {
	Name   string
	MIME   string
	Size   int64
	Reason Reason
	Limits Limits
}

func (e *RejectedError) Error() string {
	switch e.Reason {
	case ReasonTooLarge:
		return fmt.Sprintf("%s is %s, the limit is %s",
			e.Name, humanize.IBytes(uint64(e.Size)), humanize.IBytes(uint64(e.Limits.MaxBytes)))
	case ReasonTooSmall:
		return fmt.Sprintf("%s is too small (%s) to be a valid image", e.Name, humanize.IBytes(uint64(e.Size)))
	default:
		mime := e.MIME
		if mime == "" {
			mime = "unknown type"
		}
		return fmt.Sprintf("%s is not a supported image (%s)", e.Name, mime)
	}
}

// Validate checks file against limits. Zero-valued limits fall back to
// DefaultLimits.
func Validate(file File, limits Limits) error {
	file = file.normalised()
	limits = limits.withDefaults()

	reject := func(reason Reason) error {
		return &RejectedError{Name: file.Name, MIME: file.MIME, Size: file.Size, Reason: reason, Limits: limits}
	}
	if !slices.Contains(limits.Allowed, file.MIME) {
		return reject(ReasonUnsupportedType)
	}
	if file.Size > limits.MaxBytes {
		return reject(ReasonTooLarge)
	}
	if file.Size < limits.MinBytes {
		return reject(ReasonTooSmall)
	}
	return nil
}

func (l Limits) withDefaults() Limits {
	defaults := DefaultLimits()
	if l.MaxBytes <= 0 {
		l.MaxBytes = defaults.MaxBytes
	}
	if l.MinBytes <= 0 {
		l.MinBytes = defaults.MinBytes
	}
	if len(l.Allowed) == 0 {
		l.Allowed = defaults.Allowed
	}
	return l
}
