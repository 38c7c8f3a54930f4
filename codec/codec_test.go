package codec

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garrison/model"
)

func renderedMessage(app *model.Application) *discordgo.Message {
	return &discordgo.Message{
		ID:        "msg-1",
		ChannelID: "chan-1",
		Embeds:    []*discordgo.MessageEmbed{Encode(app)},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	app := &model.Application{
		RequesterID: "111222333444555666",
		Department:  "宪兵队",
		Kind:        model.KindJoin,
		Name:        "Ivan Petrov",
		Static:      "123-456",
		DocumentURL: "https://example.com/doc.png",
		Reason:      "想加入宪兵队维持秩序",
		OOCName:     "ivan",
		OOCAge:      "21",
		Extra:       "每天晚上在线",
		Status:      model.StatusPending,
		CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	got, err := Decode(renderedMessage(app))
	require.NoError(t, err)

	assert.Equal(t, app.RequesterID, got.RequesterID)
	assert.Equal(t, app.Department, got.Department)
	assert.Equal(t, app.Kind, got.Kind)
	assert.Equal(t, app.Name, got.Name)
	assert.Equal(t, app.Static, got.Static)
	assert.Equal(t, app.DocumentURL, got.DocumentURL)
	assert.Equal(t, app.Reason, got.Reason)
	assert.Equal(t, app.OOCName, got.OOCName)
	assert.Equal(t, app.OOCAge, got.OOCAge)
	assert.Equal(t, app.Extra, got.Extra)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.Equal(t, app.CreatedAt, got.CreatedAt)
	assert.Equal(t, "chan-1", got.ChannelID)
	assert.Equal(t, "msg-1", got.MessageID)
}

func TestEncodeDecodeEmptyOptionals(t *testing.T) {
	app := &model.Application{
		RequesterID: "42",
		Department:  "军需处",
		Kind:        model.KindTransfer,
		Name:        "Test",
		Static:      "7",
		Status:      model.StatusPending,
		CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	got, err := Decode(renderedMessage(app))
	require.NoError(t, err)

	// 占位符在解码时还原为空值
	assert.Empty(t, got.DocumentURL)
	assert.Empty(t, got.Reason)
	assert.Empty(t, got.OOCName)
	assert.Empty(t, got.OOCAge)
	assert.Empty(t, got.Extra)
	assert.Equal(t, model.KindTransfer, got.Kind)
}

func TestDecodeDecidedStates(t *testing.T) {
	app := &model.Application{
		RequesterID:  "1001",
		Department:   "参谋部",
		Kind:         model.KindJoin,
		Name:         "A",
		Static:       "55",
		Status:       model.StatusRejected,
		DecidedBy:    "2002",
		DecidedAt:    time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC),
		RejectReason: "编号已被他人占用",
		CreatedAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	got, err := Decode(renderedMessage(app))
	require.NoError(t, err)

	assert.Equal(t, model.StatusRejected, got.Status)
	assert.Equal(t, "2002", got.DecidedBy)
	assert.Equal(t, "编号已被他人占用", got.RejectReason)
	assert.Equal(t, app.DecidedAt.Unix(), got.DecidedAt.Unix())

	app.Status = model.StatusApproved
	app.RejectReason = ""
	got, err = Decode(renderedMessage(app))
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, got.Status)
	assert.Equal(t, "2002", got.DecidedBy)
}

func TestDecodeRejectsForeignMessages(t *testing.T) {
	_, err := Decode(&discordgo.Message{Content: "hello"})
	assert.ErrorIs(t, err, ErrNoRecord)

	_, err = Decode(&discordgo.Message{Embeds: []*discordgo.MessageEmbed{
		{Title: "公告", Footer: &discordgo.MessageEmbedFooter{Text: "bot v1.2"}},
	}})
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestDecodeMentionFallback(t *testing.T) {
	msg := renderedMessage(&model.Application{
		RequesterID: "9988",
		Department:  "宪兵队",
		Kind:        model.KindJoin,
		Status:      model.StatusPending,
		CreatedAt:   time.Now().UTC(),
	})
	// 页脚被其他机器人改写时退回描述中的提及
	msg.Embeds[0].Footer.Text = footerMarker
	got, err := Decode(msg)
	require.NoError(t, err)
	assert.Equal(t, "9988", got.RequesterID)
}

func TestDecodeSynonymLabels(t *testing.T) {
	msg := renderedMessage(&model.Application{
		RequesterID: "77",
		Department:  "宪兵队",
		Kind:        model.KindJoin,
		Status:      model.StatusPending,
		CreatedAt:   time.Now().UTC(),
	})
	msg.Embeds[0].Fields[0].Value = "**名字：**Boris\n**静态编号：**456-789"
	got, err := Decode(msg)
	require.NoError(t, err)
	assert.Equal(t, "Boris", got.Name)
	assert.Equal(t, "456-789", got.Static)
}

func TestDecodeColorFallback(t *testing.T) {
	msg := renderedMessage(&model.Application{
		RequesterID: "5",
		Department:  "宪兵队",
		Kind:        model.KindJoin,
		Status:      model.StatusApproved,
		DecidedBy:   "6",
		CreatedAt:   time.Now().UTC(),
	})
	// 删掉状态字段, 仅保留颜色
	embed := msg.Embeds[0]
	kept := embed.Fields[:0]
	for _, f := range embed.Fields {
		if f.Name != fieldStatus {
			kept = append(kept, f)
		}
	}
	embed.Fields = kept
	got, err := Decode(msg)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, got.Status)
}

func TestControlIDRoundTrip(t *testing.T) {
	id := FormatControlID("mp_sb", ActionApprove, "123456789")
	assert.Equal(t, "mp_sb_approve_123456789", id)

	parsed, err := ParseControlID(id)
	require.NoError(t, err)
	assert.Equal(t, "mp_sb", parsed.Context)
	assert.Equal(t, ActionApprove, parsed.Action)
	assert.Equal(t, "123456789", parsed.RequesterID)
}

func TestParseControlIDRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "approve", "a_b", "x_approve_notdigits", "_approve_123"} {
		_, err := ParseControlID(in)
		assert.Error(t, err, in)
	}
}
