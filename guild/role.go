package guild

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fuad-daoud/disma/diff"
)

type DesiredRole struct {
	Name          string
	Permissions   Permissions
	Color         string
	Mentionable   bool
	ShowInSidebar bool
}

func (r DesiredRole) Key() string {
	return r.Name
}

type LiveRole struct {
	ID            string
	Name          string
	Permissions   Permissions
	Color         string
	Mentionable   bool
	ShowInSidebar bool
}

func (r LiveRole) Key() string {
	return r.Name
}

// Desired drops the identifier, giving the desired role that would leave r
// untouched.
func (r LiveRole) Desired() DesiredRole {
	return DesiredRole{
		Name:          r.Name,
		Permissions:   r.Permissions,
		Color:         r.Color,
		Mentionable:   r.Mentionable,
		ShowInSidebar: r.ShowInSidebar,
	}
}

func (r LiveRole) DiffsWith(desired DesiredRole) []diff.Diff {
	var b diff.Builder
	return b.Field("permissions", r.Permissions.DiffsWith(desired.Permissions)).
		Field("color", diff.Strings(r.Color, desired.Color)).
		Field("is_mentionable", diff.Bools(r.Mentionable, desired.Mentionable)).
		Field("show_in_sidebar", diff.Bools(r.ShowInSidebar, desired.ShowInSidebar)).
		Build()
}

// NormalizeColor accepts "#RRGGBB" or "RRGGBB" in any case and returns the
// lowercase six digit form. Empty stays empty.
func NormalizeColor(color string) (string, error) {
	color = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(color), "#"))
	if color == "" {
		return "", nil
	}
	if len(color) != 6 {
		return "", fmt.Errorf("invalid color %q: expected 6 hexadecimal digits", color)
	}
	for _, c := range color {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return "", fmt.Errorf("invalid color %q: expected 6 hexadecimal digits", color)
		}
	}
	return color, nil
}

// ColorFromInt renders Discord's integer colour, 0 meaning no colour.
func ColorFromInt(value int) string {
	if value <= 0 {
		return ""
	}
	return fmt.Sprintf("%06x", value&0xffffff)
}

// ColorToInt is the inverse of ColorFromInt for normalized colours. Anything
// else gives 0, no colour.
func ColorToInt(color string) int {
	value, err := strconv.ParseInt(color, 16, 32)
	if err != nil || value < 0 || value > 0xffffff {
		return 0
	}
	return int(value)
}
