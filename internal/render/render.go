// Package render rasterizes palettes and fallback gradient tiles to PNG for
// outputs that cannot use CSS.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"strings"

	"moodboard-ai/internal/moodboard"
)

const DefaultTileSize = 512

// neutral stands in for swatches whose hex cannot be drawn, such as the 5 and
// 7 digit forms the palette parser lets through.
var neutral = color.NRGBA{R: 0x9c, G: 0xa3, B: 0xaf, A: 0xff}

// ParseHex accepts #rgb, #rgba, #rrggbb and #rrggbbaa. Alpha is straight, not
// premultiplied.
func ParseHex(hex string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	switch len(h) {
	case 3, 4:
		var expanded strings.Builder
		for _, r := range h {
			expanded.WriteRune(r)
			expanded.WriteRune(r)
		}
		h = expanded.String()
	case 6, 8:
	default:
		return color.NRGBA{}, fmt.Errorf("unsupported color %q", hex)
	}
	if len(h) == 6 {
		h += "ff"
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("parse color %q: %w", hex, err)
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

func stop(hex string) color.NRGBA {
	c, err := ParseHex(hex)
	if err != nil {
		return neutral
	}
	return c
}

// Tile draws a top-left to bottom-right gradient between the two tile stops.
// An undrawable stop is painted neutral grey.
func Tile(tile moodboard.GradientTile, size int) *image.NRGBA {
	if size <= 0 {
		size = DefaultTileSize
	}
	from, to := stop(tile.From.Hex), stop(tile.To.Hex)

	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	span := 2 * (size - 1)
	if span == 0 {
		span = 1
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, lerp(from, to, x+y, span))
		}
	}
	return img
}

func TilePNG(tile moodboard.GradientTile, size int) ([]byte, error) {
	return encode(Tile(tile, size))
}

// PaletteStrip draws the swatches as equal-width vertical bands. Swatches
// that fail to parse get a neutral band.
func PaletteStrip(swatches []moodboard.Swatch, width, height int) ([]byte, error) {
	if len(swatches) == 0 {
		return nil, fmt.Errorf("no swatches")
	}
	if width < len(swatches) {
		width = len(swatches) * 120
	}
	if height <= 0 {
		height = 160
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	band := width / len(swatches)
	for i, s := range swatches {
		x0 := i * band
		x1 := x0 + band
		if i == len(swatches)-1 {
			x1 = width
		}
		draw.Draw(img, image.Rect(x0, 0, x1, height), &image.Uniform{C: stop(s.Hex)}, image.Point{}, draw.Src)
	}
	return encode(img)
}

func lerp(a, b color.NRGBA, num, den int) color.NRGBA {
	mix := func(x, y uint8) uint8 {
		return uint8((int(x)*(den-num) + int(y)*num) / den)
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
