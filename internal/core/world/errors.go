package world

import "errors"

var (
	ErrUnknownEntity = errors.New("unknown entity id")
	ErrNoTransform   = errors.New("entity has no transform")
	ErrTornDown      = errors.New("world torn down")
)
