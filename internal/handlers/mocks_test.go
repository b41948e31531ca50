package handlers

import (
	"context"
	"sync"

	"moodboard-ai/internal/moodboard"
	"moodboard-ai/internal/telegram"
)

type sentKeyboard struct {
	ChatID int64
	Text   string
	KB     telegram.InlineKeyboard
}

type sentPhoto struct {
	ChatID  int64
	Name    string
	Source  *moodboard.Source
	Bytes   int
	Caption string
}

type fakeMessenger struct {
	mu        sync.Mutex
	texts     []string
	keyboards []sentKeyboard
	edits     []sentKeyboard
	photos    []sentPhoto
	answers   []string
	cleared   []int
	nextMsgID int
}

func (f *fakeMessenger) SendTyping(int64)         {}
func (f *fakeMessenger) SendUploadingPhoto(int64) {}

func (f *fakeMessenger) SendText(_ int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeMessenger) SendTextWithKeyboard(chatID int64, text string, kb telegram.InlineKeyboard) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keyboards = append(f.keyboards, sentKeyboard{ChatID: chatID, Text: text, KB: kb})
	f.nextMsgID++
	return f.nextMsgID, nil
}

func (f *fakeMessenger) EditTextWithKeyboard(chatID int64, _ int, text string, kb telegram.InlineKeyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, sentKeyboard{ChatID: chatID, Text: text, KB: kb})
	return nil
}

func (f *fakeMessenger) ClearKeyboard(_ int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, messageID)
	return nil
}

func (f *fakeMessenger) AnswerCallback(_ string, text string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, text)
	return nil
}

func (f *fakeMessenger) SendPhoto(chatID int64, src moodboard.Source, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.photos = append(f.photos, sentPhoto{ChatID: chatID, Source: &src, Caption: caption})
	return nil
}

func (f *fakeMessenger) SendPhotoBytes(chatID int64, name string, data []byte, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.photos = append(f.photos, sentPhoto{ChatID: chatID, Name: name, Bytes: len(data), Caption: caption})
	return nil
}

type fakeText struct {
	mu       sync.Mutex
	requests []moodboard.Request
	text     string
	err      error
}

func (f *fakeText) Generate(_ context.Context, req moodboard.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.text, f.err
}

type fakeImages struct {
	images []moodboard.GeneratedImage
	err    error
}

func (f *fakeImages) Generate(context.Context, []string) ([]moodboard.GeneratedImage, error) {
	return f.images, f.err
}
