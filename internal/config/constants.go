package config

import "time"

const (
	// Diagnosis/chat request timeout
	RequestTimeout = 90 * time.Second

	// History restore timeout; restore is best-effort and must not stall
	// startup of a conversation
	RestoreTimeout = 15 * time.Second

	// Cooldown between service-backed requests per chat
	Cooldown = 3 * time.Second

	// Telegram limits
	MaxTelegramMessageLen = 4096

	// History entries shown per /history call
	HistoryPageSize = 10
)
