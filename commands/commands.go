// Package commands turns detected changes into executable guild mutations.
package commands

import (
	"context"
	"fmt"

	"github.com/fuad-daoud/disma/diff"
	"github.com/fuad-daoud/disma/guild"
)

type Action int

const (
	Create Action = iota
	Update
	Delete
)

func (a Action) String() string {
	switch a {
	case Create:
		return "CREATE"
	case Update:
		return "UPDATE"
	case Delete:
		return "DELETE"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

type Entity int

const (
	Role Entity = iota
	Category
	Channel
)

func (e Entity) String() string {
	switch e {
	case Role:
		return "role"
	case Category:
		return "category"
	case Channel:
		return "channel"
	default:
		return fmt.Sprintf("Entity(%d)", int(e))
	}
}

// Description is what a command would do, available before it runs.
type Description struct {
	Action Action
	Entity Entity
	Name   string
	Diffs  []diff.Diff
}

func (d Description) String() string {
	switch d.Action {
	case Create:
		return fmt.Sprintf("create %s %s", d.Entity, d.Name)
	case Delete:
		return fmt.Sprintf("delete %s %s", d.Entity, d.Name)
	default:
		return fmt.Sprintf("update %s %s (%d changes)", d.Entity, d.Name, len(d.Diffs))
	}
}

type Command interface {
	Execute(ctx context.Context, commander guild.GuildCommander) error
	Describe() Description
}

// MutationError is returned when the guild refuses a command.
type MutationError struct {
	Description Description
	Err         error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("could not %s: %v", e.Description, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}
