package imageintake

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Codec re-encodes an image at the given quality (0..1), scaling it down so
// neither side exceeds maxDimension.
type Codec interface {
	Encode(ctx context.Context, file File, quality float64, maxDimension int) (File, error)
}

// CodecFunc adapts a function to Codec.
type CodecFunc func(ctx context.Context, file File, quality float64, maxDimension int) (File, error)

// Encode implements Codec.
func (f CodecFunc) Encode(ctx context.Context, file File, quality float64, maxDimension int) (File, error) {
	return f(ctx, file, quality, maxDimension)
}

// JPEGCodec decodes JPEG, PNG, GIF and WebP, downscales with Catmull-Rom and
// writes JPEG.
type JPEGCodec struct{}

// Encode implements Codec.
func (JPEGCodec) Encode(ctx context.Context, file File, quality float64, maxDimension int) (File, error) {
	if err := ctx.Err(); err != nil {
		return File{}, err
	}
	src, _, err := image.Decode(bytes.NewReader(file.Data))
	if err != nil {
		return File{}, fmt.Errorf("decode %s: %w", file.Name, err)
	}

	bounds := src.Bounds()
	width, height := scaledSize(bounds.Dx(), bounds.Dy(), maxDimension)
	var out image.Image = src
	if width != bounds.Dx() || height != bounds.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		out = dst
	}
	if err := ctx.Err(); err != nil {
		return File{}, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: jpegQuality(quality)}); err != nil {
		return File{}, fmt.Errorf("encode %s: %w", file.Name, err)
	}
	return File{
		Name: jpegName(file.Name),
		MIME: "image/jpeg",
		Size: int64(buf.Len()),
		Data: buf.Bytes(),
	}, nil
}

func scaledSize(width, height, maxDimension int) (int, int) {
	if maxDimension <= 0 || (width <= maxDimension && height <= maxDimension) {
		return width, height
	}
	if width >= height {
		scaled := height * maxDimension / width
		return maxDimension, max(scaled, 1)
	}
	scaled := width * maxDimension / height
	return max(scaled, 1), maxDimension
}

func jpegQuality(q float64) int {
	quality := int(q * 100)
	return min(max(quality, 1), 100)
}

func jpegName(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if base == "" {
		base = "image"
	}
	return base + ".jpg"
}
