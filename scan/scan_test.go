package scan

import (
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garrison/codec"
	"garrison/model"
)

type fakeHistory struct {
	channels map[string][]*discordgo.Message
	err      error
}

func (f *fakeHistory) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.channels[channelID], nil
}

func appMessage(requesterID, dept string, status model.AppStatus, enabled bool) *discordgo.Message {
	app := &model.Application{
		RequesterID: requesterID,
		Department:  dept,
		Kind:        model.KindJoin,
		Status:      status,
		CreatedAt:   time.Now().UTC(),
	}
	msg := &discordgo.Message{Embeds: []*discordgo.MessageEmbed{codec.Encode(app)}}
	msg.Components = []discordgo.MessageComponent{
		&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.Button{CustomID: "x_approve_" + requesterID, Disabled: !enabled},
		}},
	}
	return msg
}

func twoDepts() map[string]model.Department {
	return map[string]model.Department{
		"mp": {Name: "宪兵队", ChannelID: "chan-mp"},
		"hq": {Name: "参谋部", ChannelID: "chan-hq"},
	}
}

func TestActiveDepartments(t *testing.T) {
	f := &fakeHistory{channels: map[string][]*discordgo.Message{
		"chan-mp": {
			{Content: "闲聊"},
			appMessage("u1", "宪兵队", model.StatusPending, true),
		},
		"chan-hq": {
			appMessage("u1", "参谋部", model.StatusApproved, false),
			appMessage("u2", "参谋部", model.StatusPending, true),
		},
	}}

	active := ActiveDepartments(f, "u1", twoDepts())
	assert.Equal(t, []string{"mp"}, active)

	active = ActiveDepartments(f, "u2", twoDepts())
	assert.Equal(t, []string{"hq"}, active)

	active = ActiveDepartments(f, "u3", twoDepts())
	assert.Empty(t, active)
}

func TestDisabledControlsDoNotCount(t *testing.T) {
	// 待审核状态但按钮已禁用(例如删除确认中途重启), 不算活跃申请
	f := &fakeHistory{channels: map[string][]*discordgo.Message{
		"chan-mp": {appMessage("u1", "宪兵队", model.StatusPending, false)},
	}}
	depts := map[string]model.Department{"mp": {ChannelID: "chan-mp"}}
	assert.Empty(t, ActiveDepartments(f, "u1", depts))
}

func TestFindPending(t *testing.T) {
	f := &fakeHistory{channels: map[string][]*discordgo.Message{
		"chan-mp": {
			appMessage("u1", "宪兵队", model.StatusRejected, false),
			appMessage("u1", "宪兵队", model.StatusPending, true),
		},
	}}
	app, err := FindPending(f, "chan-mp", "u1")
	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, model.StatusPending, app.Status)

	app, err = FindPending(f, "chan-mp", "u9")
	require.NoError(t, err)
	assert.Nil(t, app)
}

func TestScanFetchErrorIsSkipped(t *testing.T) {
	f := &fakeHistory{err: errors.New("502")}
	assert.Empty(t, ActiveDepartments(f, "u1", twoDepts()))

	_, err := FindPending(f, "chan-mp", "u1")
	assert.Error(t, err)
}
