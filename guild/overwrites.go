package guild

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fuad-daoud/disma/diff"
)

// Overwrite is the allow/deny pair a category or channel applies to one role.
// Role holds the role name once resolved.
type Overwrite struct {
	Role  string
	Allow Permissions
	Deny  Permissions
}

func (o Overwrite) String() string {
	return fmt.Sprintf("%s (allow: %s, deny: %s)", o.Role, o.Allow, o.Deny)
}

// OverwriteRef is an unresolved overwrite: Role is a role name on the desired
// side and a role identifier on the live side.
type OverwriteRef struct {
	Role  string
	Allow Permissions
	Deny  Permissions
}

// Overwrites is always sorted by role name, so two lists holding the same
// entries in a different order compare equal.
type Overwrites []Overwrite

func NewOverwrites(items ...Overwrite) Overwrites {
	overwrites := make(Overwrites, len(items))
	copy(overwrites, items)
	sort.SliceStable(overwrites, func(i, j int) bool {
		return overwrites[i].Role < overwrites[j].Role
	})
	return overwrites
}

func (o Overwrites) Find(role string) (Overwrite, bool) {
	for _, overwrite := range o {
		if overwrite.Role == role {
			return overwrite, true
		}
	}
	return Overwrite{}, false
}

func (o Overwrites) Roles() []string {
	roles := make([]string, len(o))
	for i, overwrite := range o {
		roles[i] = overwrite.Role
	}
	return roles
}

func (o Overwrites) String() string {
	parts := make([]string, len(o))
	for i, overwrite := range o {
		parts[i] = overwrite.String()
	}
	return "[" + strings.Join(parts, "; ") + "]"
}

// DiffsWith compares overwrites role by role in role name order.
func (o Overwrites) DiffsWith(target Overwrites) []diff.Diff {
	current := NewOverwrites(o...)
	wanted := NewOverwrites(target...)

	var diffs []diff.Diff
	for _, role := range mergeRoles(current.Roles(), wanted.Roles()) {
		before, inCurrent := current.Find(role)
		after, inWanted := wanted.Find(role)
		switch {
		case inCurrent && !inWanted:
			diffs = append(diffs, diff.Removed(before.String()))
		case !inCurrent && inWanted:
			diffs = append(diffs, diff.Added(after.String()))
		default:
			var b diff.Builder
			b.Field("allow", before.Allow.DiffsWith(after.Allow)).
				Field("deny", before.Deny.DiffsWith(after.Deny))
			if changes := b.Build(); len(changes) > 0 {
				diffs = append(diffs, diff.Updated(role, changes))
			}
		}
	}
	return diffs
}

func mergeRoles(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	merged := make([]string, 0, len(a)+len(b))
	for _, role := range append(append([]string{}, a...), b...) {
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		merged = append(merged, role)
	}
	sort.Strings(merged)
	return merged
}

// ResolveDesiredOverwrites checks every referenced role name against the
// desired roles.
func ResolveDesiredOverwrites(entity, name string, refs []OverwriteRef, roles List[DesiredRole]) (Overwrites, error) {
	overwrites := make([]Overwrite, 0, len(refs))
	for _, ref := range refs {
		if !roles.Contains(ref.Role) {
			return nil, &SpecError{Entity: entity, Name: name, Reference: ref.Role, Err: ErrUnknownRole}
		}
		overwrites = append(overwrites, Overwrite{Role: ref.Role, Allow: ref.Allow, Deny: ref.Deny})
	}
	return NewOverwrites(overwrites...), nil
}

// ResolveLiveOverwrites maps role identifiers to the names of the live roles
// fetched in the same snapshot.
func ResolveLiveOverwrites(entity, name string, refs []OverwriteRef, roles List[LiveRole]) (Overwrites, error) {
	byID := make(map[string]string, roles.Len())
	for _, role := range roles.Items() {
		byID[role.ID] = role.Name
	}
	overwrites := make([]Overwrite, 0, len(refs))
	for _, ref := range refs {
		roleName, ok := byID[ref.Role]
		if !ok {
			return nil, &ResolutionError{Entity: entity, Name: name, Reference: ref.Role, Err: ErrUnknownRole}
		}
		overwrites = append(overwrites, Overwrite{Role: roleName, Allow: ref.Allow, Deny: ref.Deny})
	}
	return NewOverwrites(overwrites...), nil
}
