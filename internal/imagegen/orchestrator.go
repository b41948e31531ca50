// Package imagegen turns image prompts into images by walking an ordered
// chain of provider/model candidates per prompt.
package imagegen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"moodboard-ai/internal/config"
	"moodboard-ai/internal/logging"
	"moodboard-ai/internal/moodboard"
)

var (
	ErrNoProviders = errors.New("no image providers configured")
	ErrNoArtifacts = errors.New("provider returned no images")
)

// Provider is implemented by every image backend (openai, gemini, imagen).
type Provider interface {
	Name() string
	GenerateImage(ctx context.Context, model, prompt string) ([]moodboard.Source, error)
}

type AttemptState int

const (
	NotTried AttemptState = iota
	Trying
	Succeeded
	Failed
)

func (s AttemptState) String() string {
	switch s {
	case NotTried:
		return "not_tried"
	case Trying:
		return "trying"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("AttemptState(%d)", int(s))
}

type Attempt struct {
	Candidate config.Candidate
	State     AttemptState
	Err       error
	Duration  time.Duration
}

type PromptResult struct {
	Index    int
	Prompt   string
	Attempts []Attempt
	Image    *moodboard.GeneratedImage
}

type Batch struct {
	Prompts []PromptResult
}

// Images returns the successful images ordered by prompt index.
func (b *Batch) Images() []moodboard.GeneratedImage {
	if b == nil {
		return nil
	}
	out := make([]moodboard.GeneratedImage, 0, len(b.Prompts))
	for _, p := range b.Prompts {
		if p.Image != nil {
			out = append(out, *p.Image)
		}
	}
	return out
}

type Options struct {
	Candidates []config.Candidate
	Providers  map[string]Provider
	// MaxCount caps the prompts handled per batch and the prompts in flight.
	MaxCount    int
	CallTimeout time.Duration
	Logger      *slog.Logger
}

type Orchestrator struct {
	candidates  []config.Candidate
	providers   map[string]Provider
	maxCount    int
	callTimeout time.Duration
	logger      *slog.Logger
}

func New(opts Options) *Orchestrator {
	maxCount := opts.MaxCount
	if maxCount <= 0 || maxCount > moodboard.MaxImagePrompts {
		maxCount = moodboard.MaxImagePrompts
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	// Candidates whose provider is not wired are dropped up front.
	var usable []config.Candidate
	for _, c := range opts.Candidates {
		if _, ok := opts.Providers[c.Provider]; ok {
			usable = append(usable, c)
		}
	}

	return &Orchestrator{
		candidates:  usable,
		providers:   opts.Providers,
		maxCount:    maxCount,
		callTimeout: opts.CallTimeout,
		logger:      logger,
	}
}

func (o *Orchestrator) Candidates() []config.Candidate {
	out := make([]config.Candidate, len(o.candidates))
	copy(out, o.candidates)
	return out
}

// Generate returns at most one image per prompt. Prompts whose candidates all
// fail are left out; that is not an error.
func (o *Orchestrator) Generate(ctx context.Context, prompts []string) ([]moodboard.GeneratedImage, error) {
	batch, err := o.Run(ctx, prompts)
	if err != nil {
		return nil, err
	}
	return batch.Images(), nil
}

// Run is Generate with the per-prompt attempt trace.
func (o *Orchestrator) Run(ctx context.Context, prompts []string) (*Batch, error) {
	if len(o.candidates) == 0 {
		return nil, ErrNoProviders
	}
	if len(prompts) > o.maxCount {
		prompts = prompts[:o.maxCount]
	}

	batch := &Batch{Prompts: make([]PromptResult, len(prompts))}

	var eg errgroup.Group
	eg.SetLimit(o.maxCount)
	for i, prompt := range prompts {
		eg.Go(func() error {
			batch.Prompts[i] = o.runPrompt(ctx, i, prompt)
			return nil
		})
	}
	_ = eg.Wait()

	return batch, nil
}

func (o *Orchestrator) runPrompt(ctx context.Context, index int, prompt string) PromptResult {
	res := PromptResult{
		Index:    index,
		Prompt:   prompt,
		Attempts: make([]Attempt, len(o.candidates)),
	}
	for i, c := range o.candidates {
		res.Attempts[i] = Attempt{Candidate: c, State: NotTried}
	}

	for i, c := range o.candidates {
		if ctx.Err() != nil {
			break
		}

		attempt := &res.Attempts[i]
		attempt.State = Trying
		start := time.Now()
		source, err := o.call(ctx, c, prompt)
		attempt.Duration = time.Since(start)

		if err != nil {
			attempt.State = Failed
			attempt.Err = err
			o.logger.Warn("image candidate failed",
				"prompt_index", index,
				"provider", c.Provider,
				"model", c.Model,
				"dur_ms", attempt.Duration.Milliseconds(),
				"err", err,
			)
			continue
		}

		attempt.State = Succeeded
		res.Image = &moodboard.GeneratedImage{
			PromptIndex: index,
			Origin:      moodboard.OriginRemote,
			Provider:    c.Provider,
			Model:       c.Model,
			Source:      &source,
		}
		o.logger.Info("image generated",
			"prompt_index", index,
			"provider", c.Provider,
			"model", c.Model,
			"dur_ms", attempt.Duration.Milliseconds(),
		)
		break
	}

	return res
}

func (o *Orchestrator) call(ctx context.Context, c config.Candidate, prompt string) (moodboard.Source, error) {
	if o.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.callTimeout)
		defer cancel()
	}

	sources, err := o.providers[c.Provider].GenerateImage(ctx, c.Model, prompt)
	if err != nil {
		return moodboard.Source{}, err
	}
	for _, s := range sources {
		if !s.Empty() {
			return s, nil
		}
	}
	return moodboard.Source{}, ErrNoArtifacts
}
