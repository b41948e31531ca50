package moodboard

import "fmt"

// GradientTile describes a two-stop diagonal gradient. Drawing it is left to
// the caller.
type GradientTile struct {
	From      Swatch `json:"from"`
	To        Swatch `json:"to"`
	Direction string `json:"direction"`
}

const DirectionDiagonal = "to bottom right"

func (t GradientTile) CSS() string {
	return fmt.Sprintf("linear-gradient(%s, %s 0%%, %s 100%%)", t.Direction, t.From.Hex, t.To.Hex)
}

var defaultTileSwatches = []Swatch{
	{Hex: "#e5e7eb", Label: "mist"},
	{Hex: "#9ca3af", Label: "stone"},
	{Hex: "#374151", Label: "graphite"},
}

const DefaultFallbackCount = 3

func GenerateFallbackTiles(swatches []Swatch, count int) []GeneratedImage {
	if count <= 0 {
		count = DefaultFallbackCount
	}
	if len(swatches) == 0 {
		swatches = defaultTileSwatches
	}

	n := len(swatches)
	out := make([]GeneratedImage, 0, count)
	for i := 0; i < count; i++ {
		tile := GradientTile{
			From:      swatches[i%n],
			To:        swatches[(i+1)%n],
			Direction: DirectionDiagonal,
		}
		out = append(out, GeneratedImage{
			PromptIndex: i,
			Origin:      OriginFallback,
			Tile:        &tile,
		})
	}
	return out
}
