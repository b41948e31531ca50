package controller

import (
	"fmt"
	"strings"

	"moodboard-ai/internal/moodboard"
)

type State int

const (
	Idle State = iota
	GeneratingText
	TextError
	TextReady
	GeneratingImages
	ImagesError
	ImagesReady
	FallbackReady
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case GeneratingText:
		return "generating_text"
	case TextError:
		return "text_error"
	case TextReady:
		return "text_ready"
	case GeneratingImages:
		return "generating_images"
	case ImagesError:
		return "images_error"
	case ImagesReady:
		return "images_ready"
	case FallbackReady:
		return "fallback_ready"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// hasText reports whether a parsed result is on hand in this state.
func (s State) hasText() bool {
	return s == TextReady || s == ImagesReady || s == FallbackReady
}

const (
	msgNoPrompts    = "No prompts available to generate images."
	msgNoImages     = "Image generation failed. No URLs returned."
	msgImagesFailed = "Image generation failed. Please try again or check server logs."

	placeholderPalette     = "No palette parsed."
	placeholderKeywords    = "No keywords parsed."
	placeholderDescription = "No description parsed."
	placeholderPrompts     = "No prompts parsed."
)

// snapshot is the controller's whole state. It is replaced on every
// transition and never modified after publication.
type snapshot struct {
	state      State
	seq        uint64
	request    moodboard.Request
	result     *moodboard.Result
	images     []moodboard.GeneratedImage
	fallback   []moodboard.GeneratedImage
	message    string
	textBusy   bool
	imagesBusy bool
}

func (s *snapshot) with(fn func(next *snapshot)) *snapshot {
	next := *s
	fn(&next)
	return &next
}

// View is a read-only copy of the controller state for presentation.
type View struct {
	State    State
	Seq      uint64
	Request  moodboard.Request
	Result   *moodboard.Result
	Swatches []moodboard.Swatch
	Images   []moodboard.GeneratedImage
	Fallback []moodboard.GeneratedImage
	// Message is the user-facing error or hint for the last operation.
	Message string

	CanSubmit         bool
	CanGenerateImages bool
}

func (s *snapshot) view(maxImages int) View {
	v := View{
		State:     s.state,
		Seq:       s.seq,
		Request:   s.request,
		Message:   s.message,
		CanSubmit: !s.textBusy,
		Images:    append([]moodboard.GeneratedImage(nil), s.images...),
		Fallback:  append([]moodboard.GeneratedImage(nil), s.fallback...),
	}
	if s.result != nil {
		r := *s.result
		r.Keywords = append([]string(nil), r.Keywords...)
		r.Prompts = append([]string(nil), r.Prompts...)
		v.Result = &r
		v.Swatches = r.Swatches()
		v.CanGenerateImages = !s.textBusy && !s.imagesBusy && s.state.hasText() && len(r.ImagePrompts(maxImages)) > 0
	}
	return v
}

func (v View) PaletteText() string {
	if v.Result == nil || v.Result.PaletteText == "" {
		return placeholderPalette
	}
	return v.Result.PaletteText
}

func (v View) KeywordsText() string {
	if v.Result == nil || len(v.Result.Keywords) == 0 {
		return placeholderKeywords
	}
	return strings.Join(v.Result.Keywords, " · ")
}

func (v View) DescriptionText() string {
	if v.Result == nil || v.Result.Description == "" {
		return placeholderDescription
	}
	return v.Result.Description
}

func (v View) PromptsText() string {
	if v.Result == nil || len(v.Result.Prompts) == 0 {
		return placeholderPrompts
	}
	var b strings.Builder
	for i, p := range v.Result.Prompts {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, p)
	}
	return b.String()
}
