package commands

import (
	"context"

	"github.com/fuad-daoud/disma/diff"
	"github.com/fuad-daoud/disma/guild"
)

type CreateRole struct {
	Role guild.DesiredRole
}

func (c CreateRole) Execute(ctx context.Context, commander guild.GuildCommander) error {
	_, err := commander.AddRole(ctx, c.Role)
	return err
}

func (c CreateRole) Describe() Description {
	return Description{Action: Create, Entity: Role, Name: c.Role.Name}
}

type UpdateRole struct {
	Live    guild.LiveRole
	Desired guild.DesiredRole
	Diffs   []diff.Diff
}

func NewUpdateRole(live guild.LiveRole, desired guild.DesiredRole) UpdateRole {
	return UpdateRole{Live: live, Desired: desired, Diffs: live.DiffsWith(desired)}
}

func (c UpdateRole) Execute(ctx context.Context, commander guild.GuildCommander) error {
	return commander.UpdateRole(ctx, c.Live.ID, c.Desired)
}

func (c UpdateRole) Describe() Description {
	return Description{Action: Update, Entity: Role, Name: c.Live.Name, Diffs: c.Diffs}
}

type DeleteRole struct {
	Role guild.LiveRole
}

func (c DeleteRole) Execute(ctx context.Context, commander guild.GuildCommander) error {
	return commander.DeleteRole(ctx, c.Role.ID)
}

func (c DeleteRole) Describe() Description {
	return Description{Action: Delete, Entity: Role, Name: c.Role.Name}
}
