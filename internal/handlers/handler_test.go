package handlers

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodboard-ai/internal/controller"
	"moodboard-ai/internal/logging"
	"moodboard-ai/internal/moodboard"
	"moodboard-ai/internal/session"
	"moodboard-ai/internal/telegram"
)

const (
	chatID  int64 = 100
	ownerID int64 = 5
)

const boardText = `[PALETTE]
#0f172a - deep navy
#eab308 - gold
[KEYWORDS]
calm, gilded
[DESCRIPTION]
Quiet luxury.
[PROMPTS]
1. navy velvet with gold thread
2. brass lamp on dark desk`

type fixture struct {
	tg      *fakeMessenger
	text    *fakeText
	images  *fakeImages
	handler *Handler
}

func newFixture() *fixture {
	f := &fixture{
		tg:     &fakeMessenger{},
		text:   &fakeText{text: boardText},
		images: &fakeImages{},
	}
	store := session.NewStore(session.Options{
		NewController: func() *controller.Controller {
			return controller.New(controller.Options{Text: f.text, Images: f.images})
		},
	})
	f.handler = New(Options{Telegram: f.tg, Sessions: store, Logger: logging.Discard()})
	return f
}

func command(text string) telegram.Update {
	end := len(text)
	for i, r := range text {
		if r == ' ' {
			end = i
			break
		}
	}
	return telegram.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chatID},
		From:     &tgbotapi.User{ID: ownerID, UserName: "owner"},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: end}},
	}}
}

func plain(text string) telegram.Update {
	return telegram.Update{Message: &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: ownerID},
	}}
}

func callback(fromID int64, data string) telegram.Update {
	return telegram.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb1",
		From:    &tgbotapi.User{ID: fromID},
		Message: &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}}
}

func buttonData(kb telegram.InlineKeyboard) []string {
	var out []string
	for _, row := range kb.InlineKeyboard {
		for _, b := range row {
			if b.CallbackData != nil {
				out = append(out, *b.CallbackData)
			}
		}
	}
	return out
}

func TestMoodboardCommand_SendsResultWithImagesButton(t *testing.T) {
	f := newFixture()

	err := f.handler.HandleUpdate(context.Background(), command("/moodboard quiet luxury style=cinematic"))

	require.NoError(t, err)
	require.Len(t, f.text.requests, 1)
	assert.Equal(t, moodboard.Request{
		Theme:     "quiet luxury",
		UseCase:   "Brand identity",
		Style:     "Cinematic",
		Intensity: "Balanced",
	}, f.text.requests[0])

	require.Len(t, f.tg.photos, 1)
	assert.Equal(t, "palette.png", f.tg.photos[0].Name)

	require.Len(t, f.tg.keyboards, 1)
	sent := f.tg.keyboards[0]
	assert.Contains(t, sent.Text, "Quiet luxury.")
	assert.Contains(t, sent.Text, "1. navy velvet with gold thread")
	assert.Contains(t, buttonData(sent.KB), "mb:5:images")
}

func TestPlainText_EmptyPromptsHidesImagesButton(t *testing.T) {
	f := newFixture()
	f.text.text = "[DESCRIPTION]\nonly words"

	require.NoError(t, f.handler.HandleUpdate(context.Background(), plain("foggy pier")))

	require.Len(t, f.tg.keyboards, 1)
	assert.NotContains(t, buttonData(f.tg.keyboards[0].KB), "mb:5:images")
	assert.Contains(t, f.tg.keyboards[0].Text, "No prompts parsed.")
}

func TestMoodboardCommand_EmptyTheme(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.handler.HandleUpdate(context.Background(), command("/moodboard style=bold")))

	assert.Empty(t, f.text.requests)
	assert.Equal(t, []string{"❌ Please type some theme keywords first."}, f.tg.texts)
}

func TestImagesCallback_SendsRemoteImages(t *testing.T) {
	f := newFixture()
	src := moodboard.URLSource("https://img.example.com/1.png")
	f.images.images = []moodboard.GeneratedImage{{PromptIndex: 1, Origin: moodboard.OriginRemote, Provider: "openai", Model: "dall-e-3", Source: &src}}
	require.NoError(t, f.handler.HandleUpdate(context.Background(), plain("quiet luxury")))
	f.tg.photos = nil

	require.NoError(t, f.handler.HandleUpdate(context.Background(), callback(ownerID, "mb:5:images")))

	require.Len(t, f.tg.photos, 1)
	assert.Equal(t, "https://img.example.com/1.png", f.tg.photos[0].Source.URL)
	assert.Contains(t, f.tg.photos[0].Caption, "2. brass lamp on dark desk")
}

func TestImagesCommand_FallbackTiles(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.handler.HandleUpdate(context.Background(), plain("quiet luxury")))
	f.tg.photos = nil

	require.NoError(t, f.handler.HandleUpdate(context.Background(), command("/images")))

	require.Len(t, f.tg.photos, 3)
	assert.Equal(t, "tile-1.png", f.tg.photos[0].Name)
	assert.Equal(t, "#0f172a → #eab308", f.tg.photos[0].Caption)
	assert.Greater(t, f.tg.photos[0].Bytes, 0)
	assert.Contains(t, f.tg.texts, "🎨 Generating images, this can take a minute...")
	assert.Contains(t, f.tg.texts[len(f.tg.texts)-1], "Image generation failed")
}

func TestImagesCommand_BeforeMoodboard(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.handler.HandleUpdate(context.Background(), command("/images")))

	assert.Equal(t, []string{"❌ Build a moodboard first: send a theme."}, f.tg.texts)
}

func TestImagesCommand_OddLengthHexStillSendsTiles(t *testing.T) {
	f := newFixture()
	f.text.text = "[PALETTE]\n#12345 - odd\n#abcdef1 - seven\n[PROMPTS]\n1. fog"
	require.NoError(t, f.handler.HandleUpdate(context.Background(), plain("fog")))
	f.tg.photos = nil

	require.NoError(t, f.handler.HandleUpdate(context.Background(), command("/images")))

	require.Len(t, f.tg.photos, 3)
	for _, p := range f.tg.photos {
		assert.Greater(t, p.Bytes, 0)
	}
}

func TestNew_NilLogger(t *testing.T) {
	f := newFixture()
	h := New(Options{Telegram: f.tg, Sessions: f.handler.sessions})

	require.NotNil(t, h.logger)
	require.NoError(t, h.HandleUpdate(context.Background(), command("/images")))
}

func TestCallback_RejectsOtherUsers(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.handler.HandleUpdate(context.Background(), callback(99, "mb:5:images")))

	assert.Equal(t, []string{"This menu belongs to someone else."}, f.tg.answers)
	assert.Empty(t, f.tg.texts)
}

func TestCallback_SetStyleUpdatesSelection(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.handler.HandleUpdate(context.Background(), callback(ownerID, "mb:5:set:style:vintage")))

	require.Len(t, f.tg.edits, 1)
	assert.Contains(t, f.tg.edits[0].Text, "Style: Vintage film")

	require.NoError(t, f.handler.HandleUpdate(context.Background(), plain("old harbor")))
	require.Len(t, f.text.requests, 1)
	assert.Equal(t, "Vintage film", f.text.requests[0].Style)
}

func TestRegenerateCallback_ReusesTheme(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.handler.HandleUpdate(context.Background(), plain("quiet luxury")))

	require.NoError(t, f.handler.HandleUpdate(context.Background(), callback(ownerID, "mb:5:regen")))

	require.Len(t, f.text.requests, 2)
	assert.Equal(t, "quiet luxury", f.text.requests[1].Theme)
	assert.Equal(t, []int{1}, f.tg.cleared)
}

func TestResetCommand(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.handler.HandleUpdate(context.Background(), plain("quiet luxury")))

	require.NoError(t, f.handler.HandleUpdate(context.Background(), command("/reset")))
	require.NoError(t, f.handler.HandleUpdate(context.Background(), command("/images")))

	assert.Contains(t, f.tg.texts[len(f.tg.texts)-1], "Build a moodboard first")
}
