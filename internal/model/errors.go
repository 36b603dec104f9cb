package model

import "errors"

// Common errors used across the application
var (
	// Lookup errors
	ErrGameNotFound   = errors.New("game not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrGameExists     = errors.New("game already exists")

	// Local rejections, raised before any store call
	ErrGameFull         = errors.New("game is full")
	ErrPasswordMismatch = errors.New("password does not match")
	ErrColorTaken       = errors.New("color is held by another player")
	ErrInvalidColor     = errors.New("color is not in the palette")
	ErrUnknownEffect    = errors.New("unknown effect")
	ErrEffectKind       = errors.New("effect does not support this adjustment")
	ErrInvalidIntent    = errors.New("invalid intent")

	// Store errors
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidPath      = errors.New("invalid document path")
	ErrNotSubscribed    = errors.New("not subscribed to a game")
)
