package application

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garrison/codec"
	"garrison/config"
	"garrison/model"
)

// fakeRestoreSession 模拟频道状态: 面板发送后留在频道里, 重启恢复应当找到它
// 而不是再发一份。
type fakeRestoreSession struct {
	messages map[string]*discordgo.Message
	history  map[string][]*discordgo.Message
	pinned   map[string][]*discordgo.Message
	sent     []*discordgo.Message
	edits    []*discordgo.MessageEdit
	nextID   int
}

func newFakeRestoreSession() *fakeRestoreSession {
	return &fakeRestoreSession{
		messages: make(map[string]*discordgo.Message),
		history:  make(map[string][]*discordgo.Message),
		pinned:   make(map[string][]*discordgo.Message),
	}
}

func (f *fakeRestoreSession) addHistory(msg *discordgo.Message) {
	f.messages[msg.ChannelID+"/"+msg.ID] = msg
	f.history[msg.ChannelID] = append(f.history[msg.ChannelID], msg)
}

func (f *fakeRestoreSession) ChannelMessage(channelID, messageID string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if msg, ok := f.messages[channelID+"/"+messageID]; ok {
		return msg, nil
	}
	return nil, errors.New("unknown message")
}

func (f *fakeRestoreSession) ChannelMessages(channelID string, _ int, _, _, _ string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	return f.history[channelID], nil
}

func (f *fakeRestoreSession) ChannelMessagesPinned(channelID string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	return f.pinned[channelID], nil
}

func (f *fakeRestoreSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.nextID++
	msg := &discordgo.Message{
		ID:         fmt.Sprintf("sent-%d", f.nextID),
		ChannelID:  channelID,
		Author:     &discordgo.User{ID: "bot"},
		Embeds:     data.Embeds,
		Components: data.Components,
	}
	f.addHistory(msg)
	f.sent = append(f.sent, msg)
	return msg, nil
}

func (f *fakeRestoreSession) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	msg, ok := f.messages[m.Channel+"/"+m.ID]
	if !ok {
		return nil, errors.New("unknown message")
	}
	f.edits = append(f.edits, m)
	return msg, nil
}

func (f *fakeRestoreSession) ChannelMessagePin(channelID, messageID string, _ ...discordgo.RequestOption) error {
	msg, ok := f.messages[channelID+"/"+messageID]
	if !ok {
		return errors.New("unknown message")
	}
	f.pinned[channelID] = append(f.pinned[channelID], msg)
	return nil
}

func setupRestoreConfig(t *testing.T) {
	old := panelStateFile
	panelStateFile = filepath.Join(t.TempDir(), "panels.json")
	t.Cleanup(func() { panelStateFile = old })

	config.Cfg = model.Config{
		Departments: map[string]model.Department{
			"mp": {Name: "宪兵队", ChannelID: "chan-mp"},
		},
	}
}

func TestRestoreAllIsIdempotent(t *testing.T) {
	setupRestoreConfig(t)
	f := newFakeRestoreSession()

	app := &model.Application{
		RequesterID: "123456",
		Department:  "宪兵队",
		Kind:        model.KindJoin,
		Name:        "张三",
		Static:      "111-222",
		Reason:      "想为部门效力",
		Status:      model.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	f.addHistory(&discordgo.Message{
		ID:        "app-1",
		ChannelID: "chan-mp",
		Embeds:    []*discordgo.MessageEmbed{codec.Encode(app)},
	})

	restoreAll(f, "bot")
	require.Len(t, f.sent, 1, "首次恢复应当补建一个面板")
	require.NotEmpty(t, f.edits)
	firstIDs := buttonIDs(*f.edits[len(f.edits)-1].Components)

	restoreAll(f, "bot")
	// 第二次恢复必须复用已有面板, 不能重复发送
	assert.Len(t, f.sent, 1)
	secondIDs := buttonIDs(*f.edits[len(f.edits)-1].Components)
	assert.Equal(t, firstIDs, secondIDs, "重挂的按钮ID必须与上一次完全一致")
}

// flakyMessageSession fails the first N message fetches, 模拟瞬时网络错误。
type flakyMessageSession struct {
	*fakeRestoreSession
	failures int
}

func (f *flakyMessageSession) ChannelMessage(channelID, messageID string, opts ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("timeout")
	}
	return f.fakeRestoreSession.ChannelMessage(channelID, messageID, opts...)
}

func TestFetchMessageRetriesOnce(t *testing.T) {
	base := newFakeRestoreSession()
	base.addHistory(&discordgo.Message{ID: "m1", ChannelID: "c1"})
	f := &flakyMessageSession{fakeRestoreSession: base, failures: 1}

	msg, err := fetchMessageWithRetry(f, "c1", "m1")
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
}

func TestRestorePanelFindsPinWhenStateLost(t *testing.T) {
	setupRestoreConfig(t)
	f := newFakeRestoreSession()

	restoreAll(f, "bot")
	require.Len(t, f.sent, 1)

	// 状态文件丢失后, 置顶扫描应当找回面板而不是重建
	panelStateFile = filepath.Join(t.TempDir(), "panels.json")
	restoreAll(f, "bot")
	assert.Len(t, f.sent, 1)
}
