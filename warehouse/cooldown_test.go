package warehouse

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garrison/codec"
	"garrison/model"
)

type fakeHistory struct {
	msgs []*discordgo.Message
}

func (f *fakeHistory) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	return f.msgs, nil
}

func supplyMessage(requesterID string, status model.AppStatus, createdAt time.Time) *discordgo.Message {
	app := &model.Application{
		RequesterID: requesterID,
		Kind:        model.KindSupply,
		Status:      status,
		DecidedBy:   "mod",
		CreatedAt:   createdAt,
	}
	return &discordgo.Message{Embeds: []*discordgo.MessageEmbed{codec.Encode(app)}}
}

func TestCooldownBlocksInsideWindow(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	window := 24 * time.Hour
	f := &fakeHistory{msgs: []*discordgo.Message{
		supplyMessage("u1", model.StatusApproved, t0),
	}}

	// 窗口结束前一分钟仍被阻止
	ok, next, err := Check(f, "chan", "u1", window, t0.Add(window-time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)
	require.NotNil(t, next)
	assert.Equal(t, t0.Add(window), *next)

	// 窗口结束后一分钟放行
	ok, next, err = Check(f, "chan", "u1", window, t0.Add(window+time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, next)
}

func TestCooldownIgnoresRejected(t *testing.T) {
	t0 := time.Now().UTC()
	f := &fakeHistory{msgs: []*discordgo.Message{
		supplyMessage("u1", model.StatusRejected, t0),
	}}
	ok, next, err := Check(f, "chan", "u1", 24*time.Hour, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, next)
}

func TestCooldownOnlyCountsOwnSupplyRecords(t *testing.T) {
	t0 := time.Now().UTC()
	join := &model.Application{
		RequesterID: "u1",
		Department:  "宪兵队",
		Kind:        model.KindJoin,
		Status:      model.StatusPending,
		CreatedAt:   t0,
	}
	f := &fakeHistory{msgs: []*discordgo.Message{
		{Content: "闲聊"},
		{Embeds: []*discordgo.MessageEmbed{codec.Encode(join)}},
		supplyMessage("u2", model.StatusApproved, t0),
	}}
	ok, _, err := Check(f, "chan", "u1", 24*time.Hour, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCooldownUsesMostRecentRecord(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	// 历史按从新到旧返回: 最新一条是被拒绝的, 不占用冷却
	f := &fakeHistory{msgs: []*discordgo.Message{
		supplyMessage("u1", model.StatusRejected, t0.Add(time.Hour)),
		supplyMessage("u1", model.StatusApproved, t0),
	}}
	ok, _, err := Check(f, "chan", "u1", 24*time.Hour, t0.Add(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)
}
