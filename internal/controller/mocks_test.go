package controller

import (
	"context"
	"sync"

	"moodboard-ai/internal/moodboard"
)

type fakeText struct {
	mu    sync.Mutex
	calls []moodboard.Request
	text  string
	err   error
}

func (f *fakeText) Generate(_ context.Context, req moodboard.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.text, f.err
}

func (f *fakeText) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeImages struct {
	mu      sync.Mutex
	prompts [][]string
	images  []moodboard.GeneratedImage
	err     error
	// started and release, when set, make Generate block until release is closed.
	started chan struct{}
	release chan struct{}
}

func (f *fakeImages) Generate(ctx context.Context, prompts []string) ([]moodboard.GeneratedImage, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompts)
	f.mu.Unlock()

	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.images, f.err
}

func (f *fakeImages) calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.prompts...)
}

type blockingText struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingText) Generate(ctx context.Context, _ moodboard.Request) (string, error) {
	close(b.started)
	select {
	case <-b.release:
		return fullText, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
