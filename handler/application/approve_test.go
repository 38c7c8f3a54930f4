package application

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garrison/codec"
	"garrison/config"
	"garrison/db"
	"garrison/model"
)

// fakeApprovalSession 按顺序记录审批流水线触发的会话调用。
type fakeApprovalSession struct {
	calls    []string
	failRole bool
	edited   *discordgo.MessageEdit
}

func (f *fakeApprovalSession) UserChannelCreate(string, ...discordgo.RequestOption) (*discordgo.Channel, error) {
	return &discordgo.Channel{ID: "dm-channel"}, nil
}

func (f *fakeApprovalSession) ChannelMessageSendEmbed(string, *discordgo.MessageEmbed, ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.calls = append(f.calls, "dm")
	return &discordgo.Message{}, nil
}

func (f *fakeApprovalSession) GuildMemberRoleAdd(string, string, string, ...discordgo.RequestOption) error {
	f.calls = append(f.calls, "role_add")
	if f.failRole {
		return errors.New("missing permissions")
	}
	return nil
}

func (f *fakeApprovalSession) GuildMemberRoleRemove(string, string, string, ...discordgo.RequestOption) error {
	f.calls = append(f.calls, "role_remove")
	return nil
}

func (f *fakeApprovalSession) GuildMemberNickname(string, string, string, ...discordgo.RequestOption) error {
	f.calls = append(f.calls, "nickname")
	return nil
}

func (f *fakeApprovalSession) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.calls = append(f.calls, "message_edit")
	f.edited = m
	return &discordgo.Message{}, nil
}

func (f *fakeApprovalSession) InteractionResponseEdit(*discordgo.Interaction, *discordgo.WebhookEdit, ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.calls = append(f.calls, "reply")
	return &discordgo.Message{}, nil
}

func callIndex(calls []string, name string) int {
	for i, c := range calls {
		if c == name {
			return i
		}
	}
	return -1
}

func setupApprovalConfig(t *testing.T) {
	config.Cfg = model.Config{
		Database: model.Database{Path: filepath.Join(t.TempDir(), "garrison.db")},
		Departments: map[string]model.Department{
			"mp": {
				Name:         "宪兵队",
				Abbreviation: "MP",
				ChannelID:    "chan-mp",
				RoleID:       "role-mp",
			},
		},
	}
	db.InitDB()
	t.Cleanup(func() { db.DB.Close() })
}

func TestFinalizeApprovalNotifiesBeforeTerminalEdit(t *testing.T) {
	setupApprovalConfig(t)

	f := &fakeApprovalSession{}
	app := &model.Application{
		Kind:        model.KindJoin,
		RequesterID: "123456",
		Name:        "张三",
		Static:      "111-222",
		Department:  "宪兵队",
		ChannelID:   "chan-mp",
		MessageID:   "msg-1",
		Status:      model.StatusPending,
	}
	finalizeApproval(f, &discordgo.Interaction{}, "guild", "999", app)

	dm := callIndex(f.calls, "dm")
	edit := callIndex(f.calls, "message_edit")
	require.NotEqual(t, -1, dm)
	require.NotEqual(t, -1, edit)
	// 先私信, 终态消息写回是最后一步
	assert.Less(t, dm, edit)
	assert.Equal(t, "reply", f.calls[len(f.calls)-1])

	require.NotNil(t, f.edited)
	decoded, err := codec.Decode(&discordgo.Message{
		ID:        "msg-1",
		ChannelID: "chan-mp",
		Embeds:    *f.edited.Embeds,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, decoded.Status)
	assert.Equal(t, "999", decoded.DecidedBy)
}

func TestFinalizeApprovalContinuesPastRoleFailure(t *testing.T) {
	setupApprovalConfig(t)

	f := &fakeApprovalSession{failRole: true}
	app := &model.Application{
		Kind:        model.KindJoin,
		RequesterID: "123456",
		Name:        "张三",
		Static:      "111-222",
		Department:  "宪兵队",
		ChannelID:   "chan-mp",
		MessageID:   "msg-1",
		Status:      model.StatusPending,
	}
	finalizeApproval(f, &discordgo.Interaction{}, "guild", "999", app)

	// 身份组失败只产生警告, 档案与终态写回照常
	assert.NotEqual(t, -1, callIndex(f.calls, "message_edit"))
	p, err := db.GetPersonnel("123456")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "111-222", p.Static)
}
