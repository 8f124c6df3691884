package handler

import (
	"github.com/go-telegram/bot"
)

// Register attaches all command and callback handlers to the bot.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/diagnose", bot.MatchTypePrefix, h.handleDiagnoseCommand)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/chat", bot.MatchTypePrefix, h.handleChatCommand)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/history", bot.MatchTypePrefix, h.handleHistory)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/new", bot.MatchTypePrefix, h.handleNewSession)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/send", bot.MatchTypePrefix, h.handleSendCommand)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/reset", bot.MatchTypePrefix, h.handleReset)

	// Diagnosis callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "diag_submit", bot.MatchTypeExact, h.handleDiagnoseSubmit)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "diag_reset", bot.MatchTypeExact, h.handleDiagnoseReset)
}
