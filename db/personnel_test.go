package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garrison/config"
	"garrison/model"
)

func setupTestDB(t *testing.T) {
	config.Cfg.Database.Path = filepath.Join(t.TempDir(), "garrison.db")
	InitDB()
	t.Cleanup(func() { DB.Close() })
}

func TestStaticReusableAfterDismissal(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, UpsertPersonnel(&model.Personnel{
		DiscordID: "111", Name: "张三", Static: "123-456",
	}))
	require.NoError(t, MarkDismissed("111"))

	// 退役档案保留编号, 不应阻止新人登记同一编号
	require.NoError(t, UpsertPersonnel(&model.Personnel{
		DiscordID: "222", Name: "李四", Static: "123-456",
	}))

	owner, err := LookupByStatic("123-456")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, "222", owner.DiscordID)
	assert.False(t, owner.IsDismissed)
}

func TestLookupByStaticFindsDismissedClaim(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, UpsertPersonnel(&model.Personnel{
		DiscordID: "111", Name: "张三", Static: "123-456",
	}))
	require.NoError(t, MarkDismissed("111"))

	owner, err := LookupByStatic("123-456")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, "111", owner.DiscordID)
	assert.True(t, owner.IsDismissed)
}

func TestRebindStaticDismissesOldOwner(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, UpsertPersonnel(&model.Personnel{
		DiscordID: "111", Name: "张三", Static: "123-456",
	}))

	require.NoError(t, RebindStatic("123-456", "222"))

	old, err := GetPersonnel("111")
	require.NoError(t, err)
	require.NotNil(t, old)
	assert.True(t, old.IsDismissed)
	assert.Equal(t, "123-456", old.Static)

	owner, err := LookupByStatic("123-456")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, "222", owner.DiscordID)
	assert.False(t, owner.IsDismissed)
}
