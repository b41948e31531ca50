package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"moodboard-ai/internal/preset"
	"moodboard-ai/internal/session"
)

const callbackPrefix = "mb"

const (
	menuResult    = "result"
	menuMain      = "main"
	menuUseCase   = "use"
	menuStyle     = "style"
	menuIntensity = "intensity"
)

func (h *Handler) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if q == nil || q.Message == nil || q.Message.Chat == nil || q.From == nil {
		return nil
	}
	data := strings.TrimSpace(q.Data)
	if !strings.HasPrefix(data, callbackPrefix+":") {
		return nil
	}

	parts := strings.Split(data, ":")
	if len(parts) < 3 {
		return nil
	}

	ownerID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil
	}
	if ownerID != q.From.ID {
		_ = h.tg.AnswerCallback(q.ID, "This menu belongs to someone else.", true)
		return nil
	}

	action := parts[2]
	args := parts[3:]
	chatID := q.Message.Chat.ID
	msgID := q.Message.MessageID

	menu := menuResult
	switch action {
	case "images":
		_ = h.tg.AnswerCallback(q.ID, "Generating…", false)
		return h.generateImages(ctx, chatID)
	case "regen":
		_ = h.tg.AnswerCallback(q.ID, "Regenerating…", false)
		sess := h.sessions.Get(chatID, q.From.UserName)
		theme := sess.Controller.Snapshot().Request.Theme
		if strings.TrimSpace(theme) == "" {
			return h.tg.SendText(chatID, "❌ Send a theme first.")
		}
		return h.submit(ctx, chatID, ownerID, theme, sess.Selection)
	case "close":
		_ = h.tg.AnswerCallback(q.ID, "OK", false)
		return h.tg.ClearKeyboard(chatID, msgID)
	case "menu":
		if len(args) >= 1 {
			menu = args[0]
		}
	case "set":
		if len(args) >= 2 {
			h.sessions.Update(chatID, func(s *session.Session) {
				switch args[0] {
				case menuUseCase:
					s.Selection.UseCase = args[1]
				case menuStyle:
					s.Selection.Style = args[1]
				case menuIntensity:
					s.Selection.Intensity = args[1]
				}
			})
		}
		menu = menuMain
	}
	_ = h.tg.AnswerCallback(q.ID, "OK", false)

	sess := h.sessions.Get(chatID, q.From.UserName)
	view := sess.Controller.Snapshot()

	var text string
	var kb tgbotapi.InlineKeyboardMarkup
	if menu == menuResult && view.Result != nil {
		text, kb = moodboardText(view), resultKeyboard(ownerID, view)
	} else {
		if menu == menuResult {
			menu = menuMain
		}
		text, kb = presetsText(sess.Selection), presetKeyboard(ownerID, menu, sess.Selection, view.Result != nil)
	}
	return h.tg.EditTextWithKeyboard(chatID, msgID, text, kb)
}

func presetKeyboard(ownerID int64, menu string, sel preset.Selection, hasResult bool) tgbotapi.InlineKeyboardMarkup {
	switch menu {
	case menuUseCase:
		return optionKeyboard(ownerID, menuUseCase, preset.UseCases(), sel.UseCase)
	case menuStyle:
		return optionKeyboard(ownerID, menuStyle, preset.Styles(), sel.Style)
	case menuIntensity:
		return optionKeyboard(ownerID, menuIntensity, preset.Intensities(), sel.Intensity)
	}

	back := tgbotapi.NewInlineKeyboardButtonData("Close", cb(ownerID, "close"))
	if hasResult {
		back = tgbotapi.NewInlineKeyboardButtonData("⬅ Back", cb(ownerID, "menu", menuResult))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("Use case", cb(ownerID, "menu", menuUseCase)),
			tgbotapi.NewInlineKeyboardButtonData("Style", cb(ownerID, "menu", menuStyle)),
			tgbotapi.NewInlineKeyboardButtonData("Intensity", cb(ownerID, "menu", menuIntensity)),
		},
		[]tgbotapi.InlineKeyboardButton{back},
	)
}

func optionKeyboard(ownerID int64, field string, options []preset.NamedOption, selected string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for _, opt := range options {
		label := opt.Name
		if opt.Key == selected {
			label = "✅ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cb(ownerID, "set", field, opt.Key)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⬅ Back", cb(ownerID, "menu", menuMain)),
	})
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func cb(ownerID int64, parts ...string) string {
	return fmt.Sprintf("%s:%d:%s", callbackPrefix, ownerID, strings.Join(parts, ":"))
}
