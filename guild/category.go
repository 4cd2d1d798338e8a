package guild

import "github.com/fuad-daoud/disma/diff"

type DesiredCategory struct {
	Name       string
	Overwrites Overwrites
	// SyncPermissions forces the overwrites of every desired channel in the
	// category to the category's own.
	SyncPermissions bool
	ExtraChannels   ExtraItemsPolicy
}

func (c DesiredCategory) Key() string {
	return c.Name
}

func NewDesiredCategory(name string, refs []OverwriteRef, syncPermissions bool, extraChannels ExtraItemsPolicy, roles List[DesiredRole]) (DesiredCategory, error) {
	overwrites, err := ResolveDesiredOverwrites("category", name, refs, roles)
	if err != nil {
		return DesiredCategory{}, err
	}
	return DesiredCategory{
		Name:            name,
		Overwrites:      overwrites,
		SyncPermissions: syncPermissions,
		ExtraChannels:   extraChannels,
	}, nil
}

type LiveCategory struct {
	ID         string
	Name       string
	Overwrites Overwrites
}

func (c LiveCategory) Key() string {
	return c.Name
}

func NewLiveCategory(id, name string, refs []OverwriteRef, roles List[LiveRole]) (LiveCategory, error) {
	overwrites, err := ResolveLiveOverwrites("category", name, refs, roles)
	if err != nil {
		return LiveCategory{}, err
	}
	return LiveCategory{ID: id, Name: name, Overwrites: overwrites}, nil
}

func (c LiveCategory) Desired() DesiredCategory {
	return DesiredCategory{Name: c.Name, Overwrites: NewOverwrites(c.Overwrites...)}
}

// DiffsWith only looks at overwrites: the sync flag and the extra channels
// policy exist on the desired side alone.
func (c LiveCategory) DiffsWith(desired DesiredCategory) []diff.Diff {
	var b diff.Builder
	return b.Field("overwrites", c.Overwrites.DiffsWith(desired.Overwrites)).Build()
}
