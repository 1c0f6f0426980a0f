package spawn

import (
	"errors"
	"fmt"
)

var ErrAssetResolution = errors.New("asset resolution failed")

// AssetResolutionError reports which entity and slot could not be resolved.
// No entity exists in the store when Spawn returns it.
type AssetResolutionError struct {
	Entity string
	Kind   string
	Path   string
	Err    error
}

func (e *AssetResolutionError) Error() string {
	return fmt.Sprintf("entity %q: %s %q: %v", e.Entity, e.Kind, e.Path, e.Err)
}

func (e *AssetResolutionError) Unwrap() error { return e.Err }

func (e *AssetResolutionError) Is(target error) bool { return target == ErrAssetResolution }
