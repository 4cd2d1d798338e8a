package guild

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/disgoorg/disgo/discord"

	"github.com/fuad-daoud/disma/diff"
)

// Permission is the name of a single capability flag, spelled the way Discord
// documents it (ADMINISTRATOR, SEND_MESSAGES, ...).
type Permission string

const (
	CreateInstantInvite              Permission = "CREATE_INSTANT_INVITE"
	KickMembers                      Permission = "KICK_MEMBERS"
	BanMembers                       Permission = "BAN_MEMBERS"
	Administrator                    Permission = "ADMINISTRATOR"
	ManageChannels                   Permission = "MANAGE_CHANNELS"
	ManageGuild                      Permission = "MANAGE_GUILD"
	AddReactions                     Permission = "ADD_REACTIONS"
	ViewAuditLog                     Permission = "VIEW_AUDIT_LOG"
	PrioritySpeaker                  Permission = "PRIORITY_SPEAKER"
	Stream                           Permission = "STREAM"
	ViewChannel                      Permission = "VIEW_CHANNEL"
	SendMessages                     Permission = "SEND_MESSAGES"
	SendTTSMessages                  Permission = "SEND_TTS_MESSAGES"
	ManageMessages                   Permission = "MANAGE_MESSAGES"
	EmbedLinks                       Permission = "EMBED_LINKS"
	AttachFiles                      Permission = "ATTACH_FILES"
	ReadMessageHistory               Permission = "READ_MESSAGE_HISTORY"
	MentionEveryone                  Permission = "MENTION_EVERYONE"
	UseExternalEmojis                Permission = "USE_EXTERNAL_EMOJIS"
	ViewGuildInsights                Permission = "VIEW_GUILD_INSIGHTS"
	Connect                          Permission = "CONNECT"
	Speak                            Permission = "SPEAK"
	MuteMembers                      Permission = "MUTE_MEMBERS"
	DeafenMembers                    Permission = "DEAFEN_MEMBERS"
	MoveMembers                      Permission = "MOVE_MEMBERS"
	UseVAD                           Permission = "USE_VAD"
	ChangeNickname                   Permission = "CHANGE_NICKNAME"
	ManageNicknames                  Permission = "MANAGE_NICKNAMES"
	ManageRoles                      Permission = "MANAGE_ROLES"
	ManageWebhooks                   Permission = "MANAGE_WEBHOOKS"
	ManageGuildExpressions           Permission = "MANAGE_GUILD_EXPRESSIONS"
	UseApplicationCommands           Permission = "USE_APPLICATION_COMMANDS"
	RequestToSpeak                   Permission = "REQUEST_TO_SPEAK"
	ManageEvents                     Permission = "MANAGE_EVENTS"
	ManageThreads                    Permission = "MANAGE_THREADS"
	CreatePublicThreads              Permission = "CREATE_PUBLIC_THREADS"
	CreatePrivateThreads             Permission = "CREATE_PRIVATE_THREADS"
	UseExternalStickers              Permission = "USE_EXTERNAL_STICKERS"
	SendMessagesInThreads            Permission = "SEND_MESSAGES_IN_THREADS"
	UseEmbeddedActivities            Permission = "USE_EMBEDDED_ACTIVITIES"
	ModerateMembers                  Permission = "MODERATE_MEMBERS"
	ViewCreatorMonetizationAnalytics Permission = "VIEW_CREATOR_MONETIZATION_ANALYTICS"
	UseSoundboard                    Permission = "USE_SOUNDBOARD"
	CreateGuildExpressions           Permission = "CREATE_GUILD_EXPRESSIONS"
	CreateEvents                     Permission = "CREATE_EVENTS"
	UseExternalSounds                Permission = "USE_EXTERNAL_SOUNDS"
	SendVoiceMessages                Permission = "SEND_VOICE_MESSAGES"
	SendPolls                        Permission = "SEND_POLLS"
)

var permissionFlags = map[Permission]discord.Permissions{
	CreateInstantInvite:              discord.PermissionCreateInstantInvite,
	KickMembers:                      discord.PermissionKickMembers,
	BanMembers:                       discord.PermissionBanMembers,
	Administrator:                    discord.PermissionAdministrator,
	ManageChannels:                   discord.PermissionManageChannels,
	ManageGuild:                      discord.PermissionManageGuild,
	AddReactions:                     discord.PermissionAddReactions,
	ViewAuditLog:                     discord.PermissionViewAuditLog,
	PrioritySpeaker:                  discord.PermissionPrioritySpeaker,
	Stream:                           discord.PermissionStream,
	ViewChannel:                      discord.PermissionViewChannel,
	SendMessages:                     discord.PermissionSendMessages,
	SendTTSMessages:                  discord.PermissionSendTTSMessages,
	ManageMessages:                   discord.PermissionManageMessages,
	EmbedLinks:                       discord.PermissionEmbedLinks,
	AttachFiles:                      discord.PermissionAttachFiles,
	ReadMessageHistory:               discord.PermissionReadMessageHistory,
	MentionEveryone:                  discord.PermissionMentionEveryone,
	UseExternalEmojis:                discord.PermissionUseExternalEmojis,
	ViewGuildInsights:                discord.PermissionViewGuildInsights,
	Connect:                          discord.PermissionConnect,
	Speak:                            discord.PermissionSpeak,
	MuteMembers:                      discord.PermissionMuteMembers,
	DeafenMembers:                    discord.PermissionDeafenMembers,
	MoveMembers:                      discord.PermissionMoveMembers,
	UseVAD:                           discord.PermissionUseVAD,
	ChangeNickname:                   discord.PermissionChangeNickname,
	ManageNicknames:                  discord.PermissionManageNicknames,
	ManageRoles:                      discord.PermissionManageRoles,
	ManageWebhooks:                   discord.PermissionManageWebhooks,
	ManageGuildExpressions:           discord.PermissionManageGuildExpressions,
	UseApplicationCommands:           discord.PermissionUseApplicationCommands,
	RequestToSpeak:                   discord.PermissionRequestToSpeak,
	ManageEvents:                     discord.PermissionManageEvents,
	ManageThreads:                    discord.PermissionManageThreads,
	CreatePublicThreads:              discord.PermissionCreatePublicThreads,
	CreatePrivateThreads:             discord.PermissionCreatePrivateThreads,
	UseExternalStickers:              discord.PermissionUseExternalStickers,
	SendMessagesInThreads:            discord.PermissionSendMessagesInThreads,
	UseEmbeddedActivities:            discord.PermissionUseEmbeddedActivities,
	ModerateMembers:                  discord.PermissionModerateMembers,
	ViewCreatorMonetizationAnalytics: discord.PermissionViewCreatorMonetizationAnalytics,
	UseSoundboard:                    discord.PermissionUseSoundboard,
	CreateGuildExpressions:           discord.PermissionCreateGuildExpressions,
	CreateEvents:                     discord.PermissionCreateEvents,
	UseExternalSounds:                discord.PermissionUseExternalSounds,
	SendVoiceMessages:                discord.PermissionSendVoiceMessages,
	SendPolls:                        discord.PermissionSendPolls,
}

var permissionsByFlag = func() map[discord.Permissions]Permission {
	byFlag := make(map[discord.Permissions]Permission, len(permissionFlags))
	for permission, flag := range permissionFlags {
		byFlag[flag] = permission
	}
	return byFlag
}()

// Permissions is a set of capability flags stored in Discord's bit layout.
type Permissions discord.Permissions

const NoPermissions Permissions = 0

// AllPermissions masks every flag this package knows a name for.
var AllPermissions = func() Permissions {
	var all Permissions
	for _, flag := range permissionFlags {
		all |= Permissions(flag)
	}
	return all
}()

func ParsePermission(name string) (Permission, error) {
	permission := Permission(strings.ToUpper(strings.TrimSpace(name)))
	if _, ok := permissionFlags[permission]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPermission, name)
	}
	return permission, nil
}

func NewPermissions(permissions ...Permission) Permissions {
	var set Permissions
	for _, permission := range permissions {
		if flag, ok := permissionFlags[permission]; ok {
			set |= Permissions(flag)
		}
	}
	return set
}

// ParsePermissions builds a set from permission names, failing on the first
// unknown one.
func ParsePermissions(names []string) (Permissions, error) {
	var set Permissions
	for _, name := range names {
		permission, err := ParsePermission(name)
		if err != nil {
			return NoPermissions, err
		}
		set |= Permissions(permissionFlags[permission])
	}
	return set, nil
}

func (p Permissions) Has(permission Permission) bool {
	flag, ok := permissionFlags[permission]
	return ok && p&Permissions(flag) != 0
}

// Items lists the flags in bit order.
func (p Permissions) Items() []Permission {
	known := uint64(p & AllPermissions)
	items := make([]Permission, 0, bits.OnesCount64(known))
	for known != 0 {
		flag := uint64(1) << bits.TrailingZeros64(known)
		items = append(items, permissionsByFlag[discord.Permissions(flag)])
		known &^= flag
	}
	return items
}

func (p Permissions) Names() []string {
	items := p.Items()
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = string(item)
	}
	return names
}

func (p Permissions) String() string {
	return "[" + strings.Join(p.Names(), ", ") + "]"
}

// DiffsWith lists the flags removed from and added to p to reach target.
// Flags without a known name are not compared.
func (p Permissions) DiffsWith(target Permissions) []diff.Diff {
	var diffs []diff.Diff
	for _, removed := range (p &^ target).Names() {
		diffs = append(diffs, diff.Removed(removed))
	}
	for _, added := range (target &^ p).Names() {
		diffs = append(diffs, diff.Added(added))
	}
	return diffs
}
