package telegram

import (
	"github.com/go-telegram/bot/models"
)

// InlineButton creates a single inline keyboard button.
func InlineButton(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// InlineKeyboard creates an inline keyboard from rows of buttons.
func InlineKeyboard(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

// ButtonRow creates a row of inline buttons.
func ButtonRow(buttons ...models.InlineKeyboardButton) []models.InlineKeyboardButton {
	return buttons
}

// ReplyKeyboard creates a persistent reply keyboard from rows of labels.
func ReplyKeyboard(rows ...[]string) *models.ReplyKeyboardMarkup {
	kb := make([][]models.KeyboardButton, len(rows))
	for i, row := range rows {
		buttons := make([]models.KeyboardButton, len(row))
		for j, label := range row {
			buttons[j] = models.KeyboardButton{Text: label}
		}
		kb[i] = buttons
	}
	return &models.ReplyKeyboardMarkup{
		Keyboard:       kb,
		ResizeKeyboard: true,
	}
}
