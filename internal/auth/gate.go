package auth

import (
	"github.com/spec-kit/ticket-coordinator/internal/domain"
)

// Level is an ordered authorization level. Higher levels satisfy every
// requirement of the levels below them.
type Level int

const (
	LevelNone Level = iota
	LevelHelper
	LevelStaff
	LevelAdmin
)

func (l Level) String() string {
	switch l {
	case LevelAdmin:
		return "admin"
	case LevelStaff:
		return "staff"
	case LevelHelper:
		return "helper"
	default:
		return "none"
	}
}

// Action enumerates gated ticket operations.
type Action string

const (
	ActionCreatePanel     Action = "create_panel"
	ActionJoinSlot        Action = "join_slot"
	ActionLeaveSlot       Action = "leave_slot"
	ActionCloseTicket     Action = "close_ticket"
	ActionConfigureTenant Action = "configure_tenant"
	ActionRemoveHelper    Action = "remove_helper"
)

var requiredLevels = map[Action]Level{
	ActionCreatePanel:     LevelStaff,
	ActionJoinSlot:        LevelHelper,
	ActionLeaveSlot:       LevelNone,
	ActionCloseTicket:     LevelStaff,
	ActionConfigureTenant: LevelAdmin,
	ActionRemoveHelper:    LevelAdmin,
}

// RequiredLevel returns the minimum level for an action. LeaveSlot is
// self-only at any level; the self check lives in the ticket session.
func RequiredLevel(action Action) Level {
	return requiredLevels[action]
}

// ClassifyLevel computes the actor's authorization level against the tenant
// configuration. Pure function of its inputs: no state, no side effects.
// Unset roles never match, so a tenant with no roles configured grants levels
// above None only through the platform-admin capability.
func ClassifyLevel(actor domain.Actor, cfg domain.TenantConfig) Level {
	if actor.PlatformAdmin || actor.HasRole(cfg.AdminRoleID) {
		return LevelAdmin
	}
	if actor.HasRole(cfg.StaffRoleID) {
		return LevelStaff
	}
	if actor.HasRole(cfg.HelperRoleID) {
		return LevelHelper
	}
	return LevelNone
}

// Authorize checks the actor against the minimum level for the action and
// returns the actor's level, or ErrAuthorizationDenied when it falls short.
func Authorize(actor domain.Actor, cfg domain.TenantConfig, action Action) (Level, error) {
	level := ClassifyLevel(actor, cfg)
	if level < RequiredLevel(action) {
		return level, domain.ErrAuthorizationDenied
	}
	return level, nil
}
