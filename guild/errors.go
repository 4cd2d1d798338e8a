package guild

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownPermission = errors.New("unknown permission")
	ErrUnknownRole       = errors.New("unknown role")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrUnknownPolicy     = errors.New("unknown extra items policy")
	ErrUnknownKind       = errors.New("unknown channel kind")
)

// SpecError reports a desired entity that cannot be built from the guild
// layout document, before anything is sent to the guild.
type SpecError struct {
	Entity    string
	Name      string
	Reference string
	Err       error
}

func (e *SpecError) Error() string {
	if e.Reference == "" {
		return fmt.Sprintf("%s %q: %v", e.Entity, e.Name, e.Err)
	}
	return fmt.Sprintf("%s %q: %v %q", e.Entity, e.Name, e.Err, e.Reference)
}

func (e *SpecError) Unwrap() error {
	return e.Err
}

// ResolutionError reports a live entity referencing an identifier that is not
// part of the same snapshot.
type ResolutionError struct {
	Entity    string
	Name      string
	Reference string
	Err       error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("inconsistent guild snapshot: %s %q references %v id %s", e.Entity, e.Name, e.Err, e.Reference)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
