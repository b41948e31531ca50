package moodboard

import (
	"regexp"
	"strings"
	"unicode"
)

type Sections struct {
	Palette     string
	Keywords    string
	Description string
	Prompts     string
}

// Empty reports whether nothing at all was parsed.
func (s Sections) Empty() bool {
	return s.Palette == "" && s.Keywords == "" && s.Description == "" && s.Prompts == ""
}

const (
	markerPalette     = "PALETTE"
	markerKeywords    = "KEYWORDS"
	markerDescription = "DESCRIPTION"
	markerPrompts     = "PROMPTS"
)

var markerRegex = regexp.MustCompile(`(?i)\[\s*(PALETTE|KEYWORDS|DESCRIPTION|PROMPTS)\s*\]`)

// ParseSections splits a provider response on the four section markers.
// A marker's first occurrence opens its section, which ends at the next
// marker occurrence of any kind. With no markers at all the whole text is
// the description.
func ParseSections(text string) Sections {
	matches := markerRegex.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return Sections{Description: strings.TrimSpace(text)}
	}

	found := make(map[string]string, 4)
	for i, m := range matches {
		name := strings.ToUpper(text[m[2]:m[3]])
		if _, seen := found[name]; seen {
			continue
		}
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		found[name] = strings.TrimSpace(text[m[1]:end])
	}

	return Sections{
		Palette:     found[markerPalette],
		Keywords:    found[markerKeywords],
		Description: found[markerDescription],
		Prompts:     found[markerPrompts],
	}
}

var hexRegex = regexp.MustCompile(`^#[0-9a-fA-F]{3,8}$`)

func RenderPalette(paletteText string) []Swatch {
	var out []Swatch
	for _, line := range strings.Split(paletteText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		idx := strings.IndexByte(line, '#')
		if idx < 0 {
			continue
		}
		rest := line[idx:]
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			end = len(rest)
		}
		hex := rest[:end]
		if !hexRegex.MatchString(hex) {
			continue
		}

		out = append(out, Swatch{
			Hex:   hex,
			Label: cleanLabel(rest[end:]),
		})
	}
	return out
}

func cleanLabel(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "-–—:")
	return strings.TrimSpace(s)
}

func TokenizeKeywords(keywordsText string) []string {
	fields := strings.FieldsFunc(keywordsText, func(r rune) bool {
		switch r {
		case ',', '\n', '·', '•':
			return true
		}
		return false
	})

	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

var numberingRegex = regexp.MustCompile(`^\d+\.\s*`)

func ExtractPrompts(promptsText string) []string {
	var out []string
	for _, line := range strings.Split(promptsText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimSpace(numberingRegex.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
