package models

import "errors"

var (
	ErrEntityNotFound    = errors.New("entity not found")
	ErrComponentNotFound = errors.New("component not found")
	ErrDuplicateID       = errors.New("entity id already registered")
	ErrHandleRegistered  = errors.New("entity handle already registered")
)
