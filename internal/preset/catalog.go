package preset

import "strings"

type NamedOption struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

var useCases = []NamedOption{
	{Key: "branding", Name: "Brand identity"},
	{Key: "fashion", Name: "Fashion editorial"},
	{Key: "interior", Name: "Interior design"},
	{Key: "film", Name: "Film / music video"},
	{Key: "social", Name: "Social media content"},
	{Key: "product", Name: "Product packaging"},
	{Key: "event", Name: "Event / wedding"},
}

var styles = []NamedOption{
	{Key: "minimal", Name: "Minimal & clean"},
	{Key: "cinematic", Name: "Cinematic"},
	{Key: "vintage", Name: "Vintage film"},
	{Key: "y2k", Name: "Y2K / retro-futurism"},
	{Key: "dark_academia", Name: "Dark academia"},
	{Key: "ethereal", Name: "Soft & ethereal"},
	{Key: "brutalist", Name: "Brutalist"},
	{Key: "maximalist", Name: "Maximalist pop"},
}

var intensities = []NamedOption{
	{Key: "subtle", Name: "Subtle"},
	{Key: "balanced", Name: "Balanced"},
	{Key: "bold", Name: "Bold"},
}

const (
	DefaultUseCase   = "branding"
	DefaultStyle     = "minimal"
	DefaultIntensity = "balanced"
)

func UseCases() []NamedOption    { return clone(useCases) }
func Styles() []NamedOption      { return clone(styles) }
func Intensities() []NamedOption { return clone(intensities) }

func UseCaseName(key string) string   { return nameOf(useCases, key) }
func StyleName(key string) string     { return nameOf(styles, key) }
func IntensityName(key string) string { return nameOf(intensities, key) }

// lookup matches a key or a display name, ignoring case and treating '-'
// and '_' alike.
func lookup(options []NamedOption, value string) (NamedOption, bool) {
	v := normalize(value)
	if v == "" {
		return NamedOption{}, false
	}
	for _, o := range options {
		if normalize(o.Key) == v || normalize(o.Name) == v {
			return o, true
		}
	}
	return NamedOption{}, false
}

func nameOf(options []NamedOption, key string) string {
	if o, ok := lookup(options, key); ok {
		return o.Name
	}
	return key
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}

func clone(in []NamedOption) []NamedOption {
	out := make([]NamedOption, len(in))
	copy(out, in)
	return out
}
