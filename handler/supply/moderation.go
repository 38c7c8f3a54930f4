package supply

import (
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"garrison/codec"
	"garrison/model"
	"garrison/utils"
)

// Supply moderation actions carried in persistent control IDs.
const (
	ActionIssue = "issue"
	ActionDeny  = "deny"
)

// decideSupply rewrites a supply record's status in place. The item fields
// are left untouched, only the status, color and decided time change.
func decideSupply(embed *discordgo.MessageEmbed, approved bool, modID string, now time.Time) {
	statusValue := fmt.Sprintf("✅ 已通过 <@%s>", modID)
	embed.Color = codec.ColorApproved
	if !approved {
		statusValue = fmt.Sprintf("❌ 已拒绝 <@%s>", modID)
		embed.Color = codec.ColorRejected
	}

	var statusField *discordgo.MessageEmbedField
	for _, f := range embed.Fields {
		if f.Name == "📊 状态" {
			statusField = f
			break
		}
	}
	if statusField == nil {
		statusField = &discordgo.MessageEmbedField{Name: "📊 状态"}
		embed.Fields = append(embed.Fields, statusField)
	}
	statusField.Value = statusValue

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "⏰ 处理时间",
		Value: fmt.Sprintf("<t:%d:R>", now.Unix()),
	})
}

// terminalButton is the single disabled button left on a decided record.
func terminalButton(approved bool, userID string) []discordgo.MessageComponent {
	label, style, action := "已发放", discordgo.SuccessButton, ActionIssue
	if !approved {
		label, style, action = "已驳回", discordgo.DangerButton, ActionDeny
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    label,
					Style:    style,
					CustomID: codec.FormatControlID("wh", action, userID),
					Disabled: true,
				},
			},
		},
	}
}

// decide handles both supply moderation buttons.
func decide(s *discordgo.Session, i *discordgo.InteractionCreate, id codec.ControlID, approved bool) {
	actorID := i.Member.User.ID
	if !utils.IsAdmin(actorID, i.Member.Roles) && !utils.IsModerator(actorID, i.Member.Roles) {
		replyEphemeral(s, i, "你没有权限处理补给申请。")
		return
	}

	msg, err := s.ChannelMessage(i.ChannelID, i.Message.ID)
	if err != nil {
		replyEphemeral(s, i, "无法读取补给申请。")
		return
	}
	app, err := codec.Decode(msg)
	if err != nil {
		log.Printf("Error decoding supply record: %v", err)
		replyEphemeral(s, i, "无法读取补给申请内容。")
		return
	}
	if app.Kind != model.KindSupply {
		replyEphemeral(s, i, "这条消息不是补给申请。")
		return
	}
	if app.Status.Terminal() {
		replyEphemeral(s, i, "这份补给申请已经被处理过了。")
		return
	}

	embed := msg.Embeds[0]
	decideSupply(embed, approved, actorID, time.Now().UTC())
	terminal := terminalButton(approved, id.RequesterID)
	_, err = s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    i.ChannelID,
		ID:         i.Message.ID,
		Embeds:     &[]*discordgo.MessageEmbed{embed},
		Components: &terminal,
	})
	if err != nil {
		log.Printf("Error editing supply record: %v", err)
		replyEphemeral(s, i, "更新补给申请失败。")
		return
	}

	if approved {
		utils.SendDM(s, id.RequesterID, &discordgo.MessageEmbed{
			Title:       "✅ 补给已发放",
			Description: "你的补给申请已通过，请到仓库领取物资。",
			Color:       codec.ColorApproved,
		})
		replyEphemeral(s, i, "✅ 已发放该补给申请。")
	} else {
		utils.SendDM(s, id.RequesterID, &discordgo.MessageEmbed{
			Title:       "❌ 补给申请被驳回",
			Description: "你的补给申请未通过。被驳回的申请不占用冷却, 可以立即重新申领。",
			Color:       codec.ColorRejected,
		})
		replyEphemeral(s, i, "已驳回该补给申请。")
	}
}

// IssueControlHandler handles the 发放 button.
func IssueControlHandler(s *discordgo.Session, i *discordgo.InteractionCreate, id codec.ControlID) {
	decide(s, i, id, true)
}

// DenyControlHandler handles the 驳回 button.
func DenyControlHandler(s *discordgo.Session, i *discordgo.InteractionCreate, id codec.ControlID) {
	decide(s, i, id, false)
}
