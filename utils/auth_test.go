package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"garrison/config"
	"garrison/model"
)

func setupAuthConfig() {
	config.Cfg = model.Config{}
	config.Cfg.Auth.Admins.Users = []string{"admin-u"}
	config.Cfg.Auth.Admins.Roles = []string{"admin-r"}
	config.Cfg.Auth.Moderators.Users = []string{"mod-u"}
	config.Cfg.Auth.Moderators.Roles = []string{"mod-r"}
}

func TestTierMembership(t *testing.T) {
	setupAuthConfig()

	assert.True(t, IsAdmin("admin-u", nil))
	assert.True(t, IsAdmin("x", []string{"admin-r"}))
	assert.False(t, IsAdmin("x", []string{"mod-r"}))

	assert.True(t, IsModerator("mod-u", nil))
	assert.True(t, IsModerator("x", []string{"other", "mod-r"}))
	assert.False(t, IsModerator("x", nil))
}

func TestCanModerate(t *testing.T) {
	setupAuthConfig()

	// 高级管理可以处理任何申请, 包括自己的
	assert.True(t, CanModerate("admin-u", nil, "anyone", nil))
	assert.True(t, CanModerate("admin-u", nil, "admin-u", nil))
	assert.True(t, CanModerate("admin-u", nil, "mod-u", nil))

	// 普通审核只能处理无职位用户的申请
	assert.True(t, CanModerate("mod-u", nil, "civilian", nil))
	assert.False(t, CanModerate("mod-u", nil, "mod-u", nil))
	assert.False(t, CanModerate("mod-u", nil, "admin-u", nil))
	assert.False(t, CanModerate("mod-u", nil, "x", []string{"mod-r"}))
	assert.False(t, CanModerate("mod-u", nil, "x", []string{"admin-r"}))

	// 普通用户无权处理
	assert.False(t, CanModerate("civilian", nil, "other", nil))
}
