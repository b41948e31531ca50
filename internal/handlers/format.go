package handlers

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"moodboard-ai/internal/controller"
	"moodboard-ai/internal/moodboard"
	"moodboard-ai/internal/preset"
)

func moodboardText(v controller.View) string {
	var b strings.Builder
	b.WriteString("🎨 Moodboard: " + v.Request.Theme + "\n")
	b.WriteString(fmt.Sprintf("%s · %s · %s\n", v.Request.UseCase, v.Request.Style, v.Request.Intensity))
	b.WriteString("\nPalette\n" + v.PaletteText() + "\n")
	b.WriteString("\nKeywords\n" + v.KeywordsText() + "\n")
	b.WriteString("\nDescription\n" + v.DescriptionText() + "\n")
	b.WriteString("\nPrompts\n" + v.PromptsText() + "\n")
	if v.CanGenerateImages {
		b.WriteString("\nTap \"Generate images\" to render the first prompts.")
	}
	return strings.TrimSpace(b.String())
}

func presetsText(sel preset.Selection) string {
	return fmt.Sprintf("⚙️ Presets\n\nUse case: %s\nStyle: %s\nIntensity: %s\n\nApplied to your next moodboard.",
		preset.UseCaseName(sel.UseCase),
		preset.StyleName(sel.Style),
		preset.IntensityName(sel.Intensity),
	)
}

func resultKeyboard(ownerID int64, v controller.View) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if v.CanGenerateImages {
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("🎨 Generate images", cb(ownerID, "images")),
		})
	}
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("🔁 Regenerate", cb(ownerID, "regen")),
		tgbotapi.NewInlineKeyboardButtonData("⚙️ Presets", cb(ownerID, "menu", menuMain)),
	})
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func imageCaption(v controller.View, img moodboard.GeneratedImage) string {
	caption := ""
	if v.Result != nil && img.PromptIndex < len(v.Result.Prompts) {
		caption = fmt.Sprintf("%d. %s", img.PromptIndex+1, v.Result.Prompts[img.PromptIndex])
	}
	if img.Provider != "" {
		caption += fmt.Sprintf("\n(%s %s)", img.Provider, img.Model)
	}
	return strings.TrimSpace(caption)
}
