package scene

import (
	"errors"
	"fmt"
)

var (
	ErrIO               = errors.New("scene document unreadable")
	ErrParse            = errors.New("scene document invalid")
	ErrDuplicateID      = errors.New("duplicate entity id")
	ErrMissingParent    = errors.New("entity extends missing parent")
	ErrInheritanceCycle = errors.New("inheritance cycle")
)

// MissingParentError reports an extends reference to an id absent from the document.
type MissingParentError struct {
	Entity string
	Parent string
}

func (e *MissingParentError) Error() string {
	return fmt.Sprintf("entity %q extends missing parent %q", e.Entity, e.Parent)
}

func (e *MissingParentError) Is(target error) bool { return target == ErrMissingParent }

// InheritanceCycleError reports the entity at which an extends loop was found.
type InheritanceCycleError struct {
	ID    string
	Chain []string
}

func (e *InheritanceCycleError) Error() string {
	if len(e.Chain) > 1 {
		return fmt.Sprintf("inheritance cycle detected at entity %q via %v", e.ID, e.Chain)
	}
	return fmt.Sprintf("inheritance cycle detected at entity %q", e.ID)
}

func (e *InheritanceCycleError) Is(target error) bool { return target == ErrInheritanceCycle }

func parseErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrParse, fmt.Sprintf(format, args...))
}
