package commands

import (
	"context"

	"github.com/fuad-daoud/disma/diff"
	"github.com/fuad-daoud/disma/guild"
)

type CreateCategory struct {
	Category guild.DesiredCategory
}

func (c CreateCategory) Execute(ctx context.Context, commander guild.GuildCommander) error {
	_, err := commander.AddCategory(ctx, c.Category)
	return err
}

func (c CreateCategory) Describe() Description {
	return Description{Action: Create, Entity: Category, Name: c.Category.Name}
}

type UpdateCategory struct {
	Live    guild.LiveCategory
	Desired guild.DesiredCategory
	Diffs   []diff.Diff
}

func NewUpdateCategory(live guild.LiveCategory, desired guild.DesiredCategory) UpdateCategory {
	return UpdateCategory{Live: live, Desired: desired, Diffs: live.DiffsWith(desired)}
}

func (c UpdateCategory) Execute(ctx context.Context, commander guild.GuildCommander) error {
	return commander.UpdateCategory(ctx, c.Live.ID, c.Desired)
}

func (c UpdateCategory) Describe() Description {
	return Description{Action: Update, Entity: Category, Name: c.Live.Name, Diffs: c.Diffs}
}

type DeleteCategory struct {
	Category guild.LiveCategory
}

func (c DeleteCategory) Execute(ctx context.Context, commander guild.GuildCommander) error {
	return commander.DeleteCategory(ctx, c.Category.ID)
}

func (c DeleteCategory) Describe() Description {
	return Description{Action: Delete, Entity: Category, Name: c.Category.Name}
}
