package guild

import (
	"fmt"
	"strings"
)

// ExtraItemsPolicy tells what happens to a live entity missing from the
// desired state. The zero value is RemoveExtraItems.
type ExtraItemsPolicy int

const (
	RemoveExtraItems ExtraItemsPolicy = iota
	KeepExtraItems
	// SyncPermissionsWithCategory only applies to channels owned by a desired
	// category.
	SyncPermissionsWithCategory
)

func (p ExtraItemsPolicy) String() string {
	switch p {
	case RemoveExtraItems:
		return "REMOVE"
	case KeepExtraItems:
		return "KEEP"
	case SyncPermissionsWithCategory:
		return "SYNC_PERMISSIONS"
	default:
		return fmt.Sprintf("ExtraItemsPolicy(%d)", int(p))
	}
}

func ParseExtraItemsPolicy(value string) (ExtraItemsPolicy, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", "REMOVE":
		return RemoveExtraItems, nil
	case "KEEP":
		return KeepExtraItems, nil
	case "SYNC_PERMISSIONS":
		return SyncPermissionsWithCategory, nil
	default:
		return RemoveExtraItems, fmt.Errorf("%w: %q", ErrUnknownPolicy, value)
	}
}
