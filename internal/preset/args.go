// Package preset holds the use-case, style and intensity choices offered to
// users and parses them out of free-form chat arguments.
package preset

import (
	"strings"

	"moodboard-ai/internal/moodboard"
)

// Selection is a set of preset keys. Unknown values are kept as typed.
type Selection struct {
	UseCase   string
	Style     string
	Intensity string
}

func Defaults() Selection {
	return Selection{UseCase: DefaultUseCase, Style: DefaultStyle, Intensity: DefaultIntensity}
}

// Request expands the selection into display names for the instruction.
func (s Selection) Request(theme string) moodboard.Request {
	return moodboard.Request{
		Theme:     strings.TrimSpace(theme),
		UseCase:   UseCaseName(s.UseCase),
		Style:     StyleName(s.Style),
		Intensity: IntensityName(s.Intensity),
	}
}

// ParseArgs pulls use=, style= and intensity= options out of raw and returns
// the remaining words as the theme. Option values may use '_' for spaces.
func ParseArgs(raw string, defaults Selection) (string, Selection) {
	sel := defaults
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", sel
	}

	var theme []string
	for _, tok := range strings.Fields(raw) {
		key, value, ok := strings.Cut(tok, "=")
		if !ok || value == "" {
			theme = append(theme, tok)
			continue
		}

		switch strings.ToLower(key) {
		case "use", "usecase", "use_case":
			sel.UseCase = resolve(useCases, value)
		case "style":
			sel.Style = resolve(styles, value)
		case "intensity", "int":
			sel.Intensity = resolve(intensities, value)
		default:
			theme = append(theme, tok)
		}
	}

	return strings.Join(theme, " "), sel
}

func resolve(options []NamedOption, value string) string {
	if o, ok := lookup(options, value); ok {
		return o.Key
	}
	return strings.ReplaceAll(value, "_", " ")
}
