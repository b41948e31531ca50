package imagegen

import (
	"context"
	"sync"

	"moodboard-ai/internal/moodboard"
)

type call struct {
	Provider string
	Model    string
	Prompt   string
}

// recorder keeps the global order of provider calls across fakes.
type recorder struct {
	mu    sync.Mutex
	calls []call
}

func (r *recorder) add(c call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

func (r *recorder) snapshot() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]call, len(r.calls))
	copy(out, r.calls)
	return out
}

type fakeProvider struct {
	name     string
	rec      *recorder
	generate func(ctx context.Context, model, prompt string) ([]moodboard.Source, error)
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) GenerateImage(ctx context.Context, model, prompt string) ([]moodboard.Source, error) {
	if f.rec != nil {
		f.rec.add(call{Provider: f.name, Model: model, Prompt: prompt})
	}
	return f.generate(ctx, model, prompt)
}
