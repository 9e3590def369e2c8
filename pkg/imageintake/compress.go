package imageintake

import (
	"context"
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/goliatone/go-formmodal/pkg/notify"
)

// Tier is a compression setting applied to files of at least MinBytes.
type Tier struct {
	MinBytes     int64   `mapstructure:"min_bytes" yaml:"min_bytes"`
	Quality      float64 `mapstructure:"quality" yaml:"quality"`
	MaxDimension int     `mapstructure:"max_dimension" yaml:"max_dimension"`
}

const megabyte = 1024 * 1024

// DefaultTiers grow stricter as files grow larger. Ordered largest first.
func DefaultTiers() []Tier {
	return []Tier{
		{MinBytes: 5 * megabyte, Quality: 0.5, MaxDimension: 1200},
		{MinBytes: 3 * megabyte, Quality: 0.6, MaxDimension: 1600},
		{MinBytes: megabyte + megabyte/2, Quality: 0.7, MaxDimension: 1920},
		{MinBytes: 0, Quality: 0.8, MaxDimension: 2048},
	}
}

// DefaultTarget is the size compression aims for.
const DefaultTarget = megabyte

// CompressionError reports a codec failure. The original file is kept.
type CompressionError struct {
	Name string
	Err  error
}

func (e *CompressionError) Error() string {
	return fmt.Sprintf("imageintake: compress %s: %v", e.Name, e.Err)
}

func (e *CompressionError) Unwrap() error { return e.Err }

// Outcome is the result of one compression attempt. File is what should be
// stored: the compressed file, or the original when skipped or failed.
type Outcome struct {
	File     File
	Original File
	Tier     Tier
	Skipped  bool
	Err      error
}

// Reduction is the fraction of bytes saved, 0 when nothing was saved.
func (o Outcome) Reduction() float64 {
	if o.Original.Size <= 0 || o.File.Size >= o.Original.Size {
		return 0
	}
	return 1 - float64(o.File.Size)/float64(o.Original.Size)
}

// CompressorOption customises a Compressor.
type CompressorOption func(*Compressor)

// WithCodec sets the encoder. The default is JPEGCodec.
func WithCodec(codec Codec) CompressorOption {
	return func(c *Compressor) {
		if codec != nil {
			c.codec = codec
		}
	}
}

// WithTarget sets the target size in bytes.
func WithTarget(bytes int64) CompressorOption {
	return func(c *Compressor) {
		if bytes > 0 {
			c.target = bytes
		}
	}
}

// WithTiers replaces the tier table. Tiers must be ordered largest first.
func WithTiers(tiers []Tier) CompressorOption {
	return func(c *Compressor) {
		if len(tiers) > 0 {
			c.tiers = append([]Tier(nil), tiers...)
		}
	}
}

// WithNotifier sets where compression results are announced.
func WithNotifier(n notify.Notifier) CompressorOption {
	return func(c *Compressor) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithDurations sets notification display times.
func WithDurations(d notify.Durations) CompressorOption {
	return func(c *Compressor) {
		c.durations = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) CompressorOption {
	return func(c *Compressor) {
		if logger != nil {
			c.log = logger
		}
	}
}

// Compressor shrinks images adaptively by size tier.
type Compressor struct {
	codec     Codec
	target    int64
	tiers     []Tier
	notifier  notify.Notifier
	durations notify.Durations
	log       *zap.Logger
}

// NewCompressor returns a compressor with the default tiers and target.
func NewCompressor(options ...CompressorOption) *Compressor {
	c := &Compressor{
		codec:     JPEGCodec{},
		target:    DefaultTarget,
		tiers:     DefaultTiers(),
		notifier:  notify.Nop{},
		durations: notify.DefaultDurations(),
		log:       zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	c.log = c.log.Named("imageintake")
	return c
}

// TierFor returns the tier applied to a file of size bytes.
func (c *Compressor) TierFor(size int64) Tier {
	for _, tier := range c.tiers {
		if size >= tier.MinBytes {
			return tier
		}
	}
	return c.tiers[len(c.tiers)-1]
}

// ShouldSkip reports whether a file is already small enough.
func (c *Compressor) ShouldSkip(size int64) bool {
	return float64(size) < 0.8*float64(c.target)
}

// Compress shrinks file. It never fails: on codec errors the outcome carries
// the original file and a CompressionError, and a warning is shown.
func (c *Compressor) Compress(ctx context.Context, file File) Outcome {
	file = file.normalised()
	outcome := Outcome{File: file, Original: file}
	if c.ShouldSkip(file.Size) {
		outcome.Skipped = true
		return outcome
	}

	tier := c.TierFor(file.Size)
	outcome.Tier = tier
	compressed, err := c.codec.Encode(ctx, file, tier.Quality, tier.MaxDimension)
	if err != nil {
		outcome.Err = &CompressionError{Name: file.Name, Err: err}
		c.log.Warn("compression failed, keeping original",
			zap.String("file", file.Name),
			zap.Int64("size", file.Size),
			zap.Error(err))
		c.notifier.Notify(
			fmt.Sprintf("Could not compress %s, the original will be used", file.Name),
			notify.LevelWarning,
			c.durations.For(notify.LevelWarning),
		)
		return outcome
	}
	compressed = compressed.normalised()
	if compressed.Size >= file.Size {
		return outcome
	}
	outcome.File = compressed

	if reduction := outcome.Reduction(); reduction >= 0.10 {
		c.notifier.Notify(
			fmt.Sprintf("%s compressed from %s to %s (%d%% smaller)",
				file.Name,
				humanize.IBytes(uint64(file.Size)),
				humanize.IBytes(uint64(compressed.Size)),
				int(math.Round(reduction*100))),
			notify.LevelSuccess,
			c.durations.For(notify.LevelSuccess),
		)
	}
	return outcome
}

// CompressAsync runs Compress on its own goroutine. The channel receives
// exactly one outcome and is then closed.
func (c *Compressor) CompressAsync(ctx context.Context, file File) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		out <- c.Compress(ctx, file)
	}()
	return out
}
