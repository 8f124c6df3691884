package domain

import "errors"

var (
	ErrInvalidMediaType = errors.New("selected file is not an image")
	ErrNoImageSelected  = errors.New("no image selected")
	ErrRequestInFlight  = errors.New("request already in flight")
	ErrAwaitingReply    = errors.New("previous message still awaiting reply")
	ErrEmptyMessage     = errors.New("message is empty and has no attachment")
	ErrLoadFailed       = errors.New("history load failed")
)
