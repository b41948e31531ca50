package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"moodboard-ai/internal/controller"
	"moodboard-ai/internal/logging"
	"moodboard-ai/internal/moodboard"
	"moodboard-ai/internal/preset"
	"moodboard-ai/internal/render"
	"moodboard-ai/internal/session"
	"moodboard-ai/internal/telegram"
)

// Messenger is the subset of the Telegram client the handler talks to.
type Messenger interface {
	SendTyping(chatID int64)
	SendUploadingPhoto(chatID int64)
	SendText(chatID int64, text string) error
	SendTextWithKeyboard(chatID int64, text string, kb telegram.InlineKeyboard) (int, error)
	EditTextWithKeyboard(chatID int64, messageID int, text string, kb telegram.InlineKeyboard) error
	ClearKeyboard(chatID int64, messageID int) error
	AnswerCallback(callbackID, text string, alert bool) error
	SendPhoto(chatID int64, src moodboard.Source, caption string) error
	SendPhotoBytes(chatID int64, name string, data []byte, caption string) error
}

type Options struct {
	Telegram Messenger
	Sessions *session.Store
	Logger   *slog.Logger
}

type Handler struct {
	tg       Messenger
	sessions *session.Store
	logger   *slog.Logger
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Handler{
		tg:       opts.Telegram,
		sessions: opts.Sessions,
		logger:   logger,
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(ctx, update.CallbackQuery)
	}
	if update.Message == nil || update.Message.Chat == nil {
		return nil
	}

	msg := update.Message
	chatID := msg.Chat.ID
	var userID int64
	var username string
	if msg.From != nil {
		userID = msg.From.ID
		username = msg.From.UserName
	}

	if msg.IsCommand() {
		return h.handleCommand(ctx, chatID, userID, username, msg)
	}

	if text := strings.TrimSpace(msg.Text); text != "" {
		sess := h.sessions.Get(chatID, username)
		theme, sel := preset.ParseArgs(text, sess.Selection)
		return h.submit(ctx, chatID, userID, theme, sel)
	}

	return nil
}

func (h *Handler) handleCommand(ctx context.Context, chatID int64, userID int64, username string, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return h.tg.SendText(chatID,
			"🎨 Moodboard AI\n\n"+
				"Send me a few theme keywords and I'll build a moodboard: palette, vibe words, a short description and image prompts.\n\n"+
				"Commands:\n"+
				"/moodboard <theme> - Build a moodboard\n"+
				"/images - Generate images for the last moodboard\n"+
				"/presets - Pick use case, style and intensity\n"+
				"/reset - Start over\n"+
				"/help - Help",
		)
	case "help":
		return h.tg.SendText(chatID,
			"🎨 Help\n\n"+
				"Plain text is used as the theme.\n"+
				"Options can follow the theme: use=branding style=cinematic intensity=bold\n"+
				"Example: /moodboard rainy tokyo night style=vintage\n\n"+
				"Use cases: "+keys(preset.UseCases())+"\n"+
				"Styles: "+keys(preset.Styles())+"\n"+
				"Intensities: "+keys(preset.Intensities()),
		)
	case "moodboard":
		sess := h.sessions.Get(chatID, username)
		theme, sel := preset.ParseArgs(msg.CommandArguments(), sess.Selection)
		return h.submit(ctx, chatID, userID, theme, sel)
	case "images":
		return h.generateImages(ctx, chatID)
	case "presets":
		sess := h.sessions.Get(chatID, username)
		msgID, err := h.tg.SendTextWithKeyboard(chatID, presetsText(sess.Selection), presetKeyboard(userID, menuMain, sess.Selection, false))
		if err != nil {
			return err
		}
		h.sessions.Update(chatID, func(s *session.Session) { s.MenuMessageID = msgID })
		return nil
	case "reset":
		h.sessions.Clear(chatID)
		return h.tg.SendText(chatID, "✅ Cleared. Send a new theme whenever you're ready.")
	default:
		return h.tg.SendText(chatID, "❌ Unknown command. Try /help.")
	}
}

func (h *Handler) submit(ctx context.Context, chatID, userID int64, theme string, sel preset.Selection) error {
	sess := h.sessions.Update(chatID, func(s *session.Session) { s.Selection = sel })
	h.retireMenu(chatID, sess.MenuMessageID)

	h.tg.SendTyping(chatID)
	v, err := sess.Controller.Submit(ctx, sel.Request(theme))
	switch {
	case errors.Is(err, controller.ErrBusy):
		return h.tg.SendText(chatID, "⏳ Still working on the previous moodboard, hang on.")
	case errors.Is(err, controller.ErrStale):
		return nil
	case err != nil:
		if !moodboard.IsValidation(err) {
			h.logger.Error("moodboard generation failed", "chat_id", chatID, "err", err)
		}
		return h.tg.SendText(chatID, "❌ "+v.Message)
	}

	if len(v.Swatches) > 0 {
		if strip, err := render.PaletteStrip(v.Swatches, 720, 160); err == nil {
			if err := h.tg.SendPhotoBytes(chatID, "palette.png", strip, "Palette"); err != nil {
				h.logger.Warn("palette send failed", "chat_id", chatID, "err", err)
			}
		}
	}

	msgID, err := h.tg.SendTextWithKeyboard(chatID, moodboardText(v), resultKeyboard(userID, v))
	if err != nil {
		return err
	}
	h.sessions.Update(chatID, func(s *session.Session) { s.MenuMessageID = msgID })
	return nil
}

func (h *Handler) generateImages(ctx context.Context, chatID int64) error {
	sess := h.sessions.Get(chatID, "")

	if sess.Controller.Snapshot().CanGenerateImages {
		h.tg.SendUploadingPhoto(chatID)
		_ = h.tg.SendText(chatID, "🎨 Generating images, this can take a minute...")
	}

	v, err := sess.Controller.GenerateImages(ctx)
	switch {
	case errors.Is(err, controller.ErrBusy):
		return h.tg.SendText(chatID, "⏳ Images are already on the way.")
	case errors.Is(err, controller.ErrStale):
		return nil
	case errors.Is(err, controller.ErrImagesDisabled):
		msg := v.Message
		if msg == "" {
			msg = "Build a moodboard first: send a theme."
		}
		return h.tg.SendText(chatID, "❌ "+msg)
	case err != nil:
		return err
	}

	if v.State == controller.FallbackReady {
		_ = h.tg.SendText(chatID, "⚠️ "+v.Message+" Here are palette tiles instead.")
		for i, tile := range v.Fallback {
			data, err := render.TilePNG(*tile.Tile, render.DefaultTileSize)
			if err != nil {
				h.logger.Warn("tile render failed", "chat_id", chatID, "err", err)
				continue
			}
			caption := fmt.Sprintf("%s → %s", tile.Tile.From.Hex, tile.Tile.To.Hex)
			if err := h.tg.SendPhotoBytes(chatID, fmt.Sprintf("tile-%d.png", i+1), data, caption); err != nil {
				return err
			}
		}
		return nil
	}

	for _, img := range v.Images {
		if img.Source == nil {
			continue
		}
		if err := h.tg.SendPhoto(chatID, *img.Source, imageCaption(v, img)); err != nil {
			h.logger.Warn("image send failed", "chat_id", chatID, "prompt_index", img.PromptIndex, "err", err)
		}
	}
	return nil
}

// retireMenu strips the keyboard from the previous result so stale buttons
// cannot be pressed.
func (h *Handler) retireMenu(chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	if err := h.tg.ClearKeyboard(chatID, messageID); err != nil {
		h.logger.Debug("clear keyboard failed", "chat_id", chatID, "err", err)
	}
}

func keys(options []preset.NamedOption) string {
	out := make([]string, 0, len(options))
	for _, o := range options {
		out = append(out, o.Key)
	}
	return strings.Join(out, ", ")
}
