// Package controller drives one moodboard session: text generation, parsing,
// image generation and the fallback path.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"moodboard-ai/internal/logging"
	"moodboard-ai/internal/moodboard"
)

var (
	ErrBusy           = errors.New("an operation is already in progress")
	ErrImagesDisabled = errors.New("image generation is not available")
	ErrStale          = errors.New("result belongs to a superseded generation")
)

type TextGenerator interface {
	Generate(ctx context.Context, req moodboard.Request) (string, error)
}

type ImageGenerator interface {
	Generate(ctx context.Context, prompts []string) ([]moodboard.GeneratedImage, error)
}

type Transition struct {
	From State
	To   State
	Seq  uint64
}

type Options struct {
	Text   TextGenerator
	Images ImageGenerator
	// MaxImages caps the prompts sent per batch, at most 3.
	MaxImages     int
	FallbackCount int
	Logger        *slog.Logger
	// OnTransition is called after each state change, outside the lock.
	OnTransition func(Transition)
}

type Controller struct {
	text          TextGenerator
	images        ImageGenerator
	maxImages     int
	fallbackCount int
	logger        *slog.Logger
	onTransition  func(Transition)

	mu  sync.Mutex
	cur *snapshot
}

func New(opts Options) *Controller {
	maxImages := opts.MaxImages
	if maxImages <= 0 || maxImages > moodboard.MaxImagePrompts {
		maxImages = moodboard.MaxImagePrompts
	}
	fallbackCount := opts.FallbackCount
	if fallbackCount <= 0 {
		fallbackCount = maxImages
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Controller{
		text:          opts.Text,
		images:        opts.Images,
		maxImages:     maxImages,
		fallbackCount: fallbackCount,
		logger:        logger,
		onTransition:  opts.OnTransition,
		cur:           &snapshot{state: Idle},
	}
}

func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur.view(c.maxImages)
}

// Submit runs one text generation for req and parses the answer. Any result
// or image batch from an earlier submission is dropped.
func (c *Controller) Submit(ctx context.Context, req moodboard.Request) (View, error) {
	c.mu.Lock()
	if c.cur.textBusy {
		c.mu.Unlock()
		return View{}, ErrBusy
	}

	if err := req.Validate(); err != nil {
		var events []Transition
		c.publish(&events, &snapshot{state: Idle, seq: c.cur.seq, message: moodboard.UserMessage(err)})
		v := c.cur.view(c.maxImages)
		c.mu.Unlock()
		c.notify(events)
		return v, err
	}

	var events []Transition
	seq := c.cur.seq + 1
	c.publish(&events, &snapshot{state: GeneratingText, seq: seq, request: req, textBusy: true})
	c.mu.Unlock()
	c.notify(events)

	text, err := c.text.Generate(ctx, req)

	c.mu.Lock()
	events = nil
	if c.cur.seq != seq {
		c.mu.Unlock()
		c.logger.Debug("discarding stale text result", "seq", seq)
		return View{}, ErrStale
	}
	if err != nil {
		msg := moodboard.UserMessage(err)
		c.publish(&events, c.cur.with(func(n *snapshot) {
			n.state = TextError
			n.textBusy = false
			n.message = msg
		}))
		c.publish(&events, &snapshot{state: Idle, seq: seq, request: req, message: msg})
		v := c.cur.view(c.maxImages)
		c.mu.Unlock()
		c.notify(events)
		return v, err
	}

	result := moodboard.NewResult(text)
	c.publish(&events, c.cur.with(func(n *snapshot) {
		n.state = TextReady
		n.textBusy = false
		n.result = &result
	}))
	v := c.cur.view(c.maxImages)
	c.mu.Unlock()
	c.notify(events)
	return v, nil
}

// GenerateImages sends the prompt prefix of the current result to the image
// generator. Zero images, or a generator error, ends in FallbackReady with
// gradient tiles built from the palette.
func (c *Controller) GenerateImages(ctx context.Context) (View, error) {
	c.mu.Lock()
	if c.cur.textBusy || c.cur.imagesBusy {
		c.mu.Unlock()
		return View{}, ErrBusy
	}
	if !c.cur.state.hasText() || c.cur.result == nil {
		c.mu.Unlock()
		return View{}, ErrImagesDisabled
	}

	result := c.cur.result
	prompts := result.ImagePrompts(c.maxImages)
	if len(prompts) == 0 {
		c.cur = c.cur.with(func(n *snapshot) { n.message = msgNoPrompts })
		v := c.cur.view(c.maxImages)
		c.mu.Unlock()
		return v, ErrImagesDisabled
	}

	var events []Transition
	seq := c.cur.seq
	c.publish(&events, c.cur.with(func(n *snapshot) {
		n.state = GeneratingImages
		n.imagesBusy = true
		n.images = nil
		n.fallback = nil
		n.message = ""
	}))
	c.mu.Unlock()
	c.notify(events)

	images, err := c.images.Generate(ctx, prompts)

	c.mu.Lock()
	events = nil
	if c.cur.seq != seq || !c.cur.imagesBusy {
		c.mu.Unlock()
		c.logger.Debug("discarding stale image batch", "seq", seq)
		return View{}, ErrStale
	}

	if err != nil || len(images) == 0 {
		msg := msgNoImages
		if err != nil {
			msg = msgImagesFailed
			c.logger.Error("image generation failed", "seq", seq, "err", err)
		}
		c.publish(&events, c.cur.with(func(n *snapshot) {
			n.state = ImagesError
			n.imagesBusy = false
			n.message = msg
		}))
		tiles := moodboard.GenerateFallbackTiles(result.Swatches(), c.fallbackCount)
		c.publish(&events, c.cur.with(func(n *snapshot) {
			n.state = FallbackReady
			n.fallback = tiles
		}))
	} else {
		c.publish(&events, c.cur.with(func(n *snapshot) {
			n.state = ImagesReady
			n.imagesBusy = false
			n.images = images
		}))
	}

	v := c.cur.view(c.maxImages)
	c.mu.Unlock()
	c.notify(events)
	return v, nil
}

// Reset returns to Idle. Work still in flight is discarded when it returns.
func (c *Controller) Reset() View {
	c.mu.Lock()
	var events []Transition
	c.publish(&events, &snapshot{state: Idle, seq: c.cur.seq + 1})
	v := c.cur.view(c.maxImages)
	c.mu.Unlock()
	c.notify(events)
	return v
}

// publish must be called with c.mu held.
func (c *Controller) publish(events *[]Transition, next *snapshot) {
	prev := c.cur
	c.cur = next
	if prev.state == next.state {
		return
	}
	t := Transition{From: prev.state, To: next.state, Seq: next.seq}
	*events = append(*events, t)
	c.logger.Debug("state transition", "from", t.From.String(), "to", t.To.String(), "seq", t.Seq)
}

func (c *Controller) notify(events []Transition) {
	if c.onTransition == nil {
		return
	}
	for _, t := range events {
		c.onTransition(t)
	}
}
