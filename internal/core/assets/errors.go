package assets

import "errors"

var (
	ErrLoad            = errors.New("asset load failed")
	ErrUnknownHandle   = errors.New("unknown asset handle")
	ErrInvalidSplatPLY = errors.New("invalid splat ply")
)
