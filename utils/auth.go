package utils

import (
	"slices"

	"garrison/config"
)

// memberOf 检查用户ID或其任一身份组是否在名单内
func memberOf(userID string, roles []string, users, allowRoles []string) bool {
	if slices.Contains(users, userID) {
		return true
	}
	for _, role := range roles {
		if slices.Contains(allowRoles, role) {
			return true
		}
	}
	return false
}

// IsAdmin 检查用户是否为高级管理
func IsAdmin(userID string, roles []string) bool {
	auth := config.Cfg.Auth
	return memberOf(userID, roles, auth.Admins.Users, auth.Admins.Roles)
}

// IsModerator 检查用户是否为普通审核
func IsModerator(userID string, roles []string) bool {
	auth := config.Cfg.Auth
	return memberOf(userID, roles, auth.Moderators.Users, auth.Moderators.Roles)
}

// CanModerate decides whether an actor may decide a requester's application.
// Admins may decide anything, including their own. Moderators may only decide
// applications from users holding neither tier, and never their own.
func CanModerate(actorID string, actorRoles []string, requesterID string, requesterRoles []string) bool {
	if IsAdmin(actorID, actorRoles) {
		return true
	}
	if !IsModerator(actorID, actorRoles) {
		return false
	}
	if actorID == requesterID {
		return false
	}
	if IsAdmin(requesterID, requesterRoles) || IsModerator(requesterID, requesterRoles) {
		return false
	}
	return true
}
