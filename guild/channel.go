package guild

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fuad-daoud/disma/diff"
)

type ChannelKind int

const (
	TextChannel ChannelKind = iota
	VoiceChannel
)

func (k ChannelKind) String() string {
	switch k {
	case TextChannel:
		return "TEXT"
	case VoiceChannel:
		return "VOICE"
	default:
		return fmt.Sprintf("ChannelKind(%d)", int(k))
	}
}

func ParseChannelKind(value string) (ChannelKind, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", "TEXT":
		return TextChannel, nil
	case "VOICE":
		return VoiceChannel, nil
	default:
		return TextChannel, fmt.Errorf("%w: %q", ErrUnknownKind, value)
	}
}

// ChannelKey builds the identity of a channel: the same name may exist in
// several categories and as both a text and a voice channel. Names are quoted
// so a colon inside one never makes two channels share a key.
func ChannelKey(categoryName, name string, kind ChannelKind) string {
	return strconv.Quote(categoryName) + "/" + strconv.Quote(name) + "/" + kind.String()
}

// ChannelLabel is the readable form of a channel identity, category:name (KIND).
func ChannelLabel(categoryName, name string, kind ChannelKind) string {
	return fmt.Sprintf("%s:%s (%s)", categoryName, name, kind)
}

type DesiredChannel struct {
	Name  string
	Topic string
	Kind  ChannelKind
	// Category is a copy of the owning desired category, nil when the channel
	// sits outside any category.
	Category   *DesiredCategory
	Overwrites Overwrites
}

func (c DesiredChannel) CategoryName() string {
	if c.Category == nil {
		return ""
	}
	return c.Category.Name
}

func (c DesiredChannel) Key() string {
	return ChannelKey(c.CategoryName(), c.Name, c.Kind)
}

func (c DesiredChannel) Label() string {
	return ChannelLabel(c.CategoryName(), c.Name, c.Kind)
}

// NewDesiredChannel resolves the category and role references of a channel.
// Channels in a category with SyncPermissions take the category overwrites
// in place of their own, which must still name known roles.
func NewDesiredChannel(name, topic string, kind ChannelKind, categoryName string, refs []OverwriteRef, roles List[DesiredRole], categories List[DesiredCategory]) (DesiredChannel, error) {
	channel := DesiredChannel{Name: name, Topic: topic, Kind: kind}

	if categoryName != "" {
		category, ok := categories.Find(categoryName)
		if !ok {
			return DesiredChannel{}, &SpecError{Entity: "channel", Name: name, Reference: categoryName, Err: ErrUnknownCategory}
		}
		channel.Category = &category
	}

	overwrites, err := ResolveDesiredOverwrites("channel", name, refs, roles)
	if err != nil {
		return DesiredChannel{}, err
	}
	channel.Overwrites = overwrites
	if channel.Category != nil && channel.Category.SyncPermissions {
		channel.Overwrites = NewOverwrites(channel.Category.Overwrites...)
	}
	return channel, nil
}

type LiveChannel struct {
	ID         string
	Name       string
	Topic      string
	Kind       ChannelKind
	Category   *LiveCategory
	Overwrites Overwrites
}

func (c LiveChannel) CategoryName() string {
	if c.Category == nil {
		return ""
	}
	return c.Category.Name
}

func (c LiveChannel) Key() string {
	return ChannelKey(c.CategoryName(), c.Name, c.Kind)
}

func (c LiveChannel) Label() string {
	return ChannelLabel(c.CategoryName(), c.Name, c.Kind)
}

// NewLiveChannel resolves a fetched channel against the roles and categories
// of the same snapshot. An empty categoryID means no category.
func NewLiveChannel(id, name, topic string, kind ChannelKind, categoryID string, refs []OverwriteRef, roles List[LiveRole], categories List[LiveCategory]) (LiveChannel, error) {
	channel := LiveChannel{ID: id, Name: name, Topic: topic, Kind: kind}

	if categoryID != "" {
		for _, category := range categories.Items() {
			if category.ID == categoryID {
				category := category
				channel.Category = &category
				break
			}
		}
		if channel.Category == nil {
			return LiveChannel{}, &ResolutionError{Entity: "channel", Name: name, Reference: categoryID, Err: ErrUnknownCategory}
		}
	}

	overwrites, err := ResolveLiveOverwrites("channel", name, refs, roles)
	if err != nil {
		return LiveChannel{}, err
	}
	channel.Overwrites = overwrites
	return channel, nil
}

// Desired gives the desired channel matching c exactly, owned by the desired
// form of its category.
func (c LiveChannel) Desired() DesiredChannel {
	channel := DesiredChannel{
		Name:       c.Name,
		Topic:      c.Topic,
		Kind:       c.Kind,
		Overwrites: NewOverwrites(c.Overwrites...),
	}
	if c.Category != nil {
		category := c.Category.Desired()
		channel.Category = &category
	}
	return channel
}

func (c LiveChannel) DiffsWith(desired DesiredChannel) []diff.Diff {
	var b diff.Builder
	return b.Field("topic", diff.Strings(c.Topic, desired.Topic)).
		Field("channel_type", diff.Strings(c.Kind.String(), desired.Kind.String())).
		Field("category", diff.Strings(c.CategoryName(), desired.CategoryName())).
		Field("overwrites", c.Overwrites.DiffsWith(desired.Overwrites)).
		Build()
}
