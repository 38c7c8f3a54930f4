package application

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"garrison/codec"
	"garrison/config"
	"garrison/model"
	"garrison/utils"
)

// decodeTarget reloads the application from the message the control sits on.
// 控件按下时一律从消息重新解码, 不信任任何内存状态。
func decodeTarget(s *discordgo.Session, i *discordgo.InteractionCreate) (*model.Application, error) {
	msg, err := s.ChannelMessage(i.ChannelID, i.Message.ID)
	if err != nil {
		return nil, err
	}
	return codec.Decode(msg)
}

// deptCodeByName maps a department display name back to its config code.
func deptCodeByName(name string) (string, model.Department, bool) {
	for code, dept := range config.Cfg.Departments {
		if dept.Name == name {
			return code, dept, true
		}
	}
	return "", model.Department{}, false
}

// ApproveControlHandler handles the 通过 button on a pending application.
func ApproveControlHandler(s *discordgo.Session, i *discordgo.InteractionCreate, id codec.ControlID) {
	actorID := i.Member.User.ID
	requesterRoles := memberRoles(s, i.GuildID, id.RequesterID)
	if !utils.CanModerate(actorID, i.Member.Roles, id.RequesterID, requesterRoles) {
		replyEphemeral(s, i, "你没有权限处理这份申请。")
		return
	}

	app, err := decodeTarget(s, i)
	if err != nil {
		log.Printf("Error decoding application on approve: %v", err)
		replyEphemeral(s, i, "无法读取申请内容，该消息可能已损坏。")
		return
	}
	if app.Status.Terminal() {
		replyEphemeral(s, i, "这份申请已经被处理过了。")
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error sending deferred response: %v", err)
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Panic in approve goroutine: %v", r)
				s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
					Content: utils.StringPtr("处理申请时发生内部错误。"),
				})
			}
		}()

		// 编号占用检查在正式通过之前进行
		if conflict, owner := findStaticConflict(app); conflict {
			promptStaticConflict(s, i, app, owner)
			return
		}
		finalizeApproval(s, i.Interaction, i.GuildID, actorID, app)
	}()
}

// RejectControlHandler opens the rejection reason modal.
func RejectControlHandler(s *discordgo.Session, i *discordgo.InteractionCreate, id codec.ControlID) {
	requesterRoles := memberRoles(s, i.GuildID, id.RequesterID)
	if !utils.CanModerate(i.Member.User.ID, i.Member.Roles, id.RequesterID, requesterRoles) {
		replyEphemeral(s, i, "你没有权限处理这份申请。")
		return
	}
	openRejectModal(s, i, i.ChannelID, i.Message.ID, "")
}

// openRejectModal shows the reason modal, optionally pre-filled.
func openRejectModal(s *discordgo.Session, i *discordgo.InteractionCreate, channelID, messageID, prefill string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: fmt.Sprintf("app_reject:%s:%s", channelID, messageID),
			Title:    "拒绝申请",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:  "reject_reason",
							Label:     "拒绝理由",
							Style:     discordgo.TextInputParagraph,
							Value:     prefill,
							Required:  true,
							MaxLength: 500,
						},
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("Error creating reject modal: %v", err)
	}
}

// RejectModalHandler finalizes a rejection with the given reason.
func RejectModalHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	parts := strings.Split(data.CustomID, ":")
	if len(parts) != 3 {
		replyEphemeral(s, i, "数据格式错误。")
		return
	}
	channelID, messageID := parts[1], parts[2]
	reason := strings.TrimSpace(modalValue(data, "reject_reason"))
	if reason == "" {
		replyEphemeral(s, i, "拒绝理由不能为空。")
		return
	}

	msg, err := s.ChannelMessage(channelID, messageID)
	if err != nil {
		replyEphemeral(s, i, "申请消息已不存在。")
		return
	}
	app, err := codec.Decode(msg)
	if err != nil {
		replyEphemeral(s, i, "无法读取申请内容。")
		return
	}
	if app.Status.Terminal() {
		replyEphemeral(s, i, "这份申请已经被处理过了。")
		return
	}

	app.Status = model.StatusRejected
	app.DecidedBy = i.Member.User.ID
	app.DecidedAt = time.Now().UTC()
	app.RejectReason = reason

	code, _, ok := deptCodeByName(app.Department)
	if !ok {
		code = "app"
	}
	terminal := terminalControls(model.StatusRejected, code, app.RequesterID)
	_, err = s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Embeds:     &[]*discordgo.MessageEmbed{codec.Encode(app)},
		Components: &terminal,
	})
	if err != nil {
		log.Printf("Error editing rejected application: %v", err)
		replyEphemeral(s, i, "更新申请消息失败。")
		return
	}

	utils.SendDM(s, app.RequesterID, &discordgo.MessageEmbed{
		Title:       "❌ 申请未通过",
		Description: fmt.Sprintf("你在 **%s** 的申请被拒绝。\n\n**理由：**%s", app.Department, reason),
		Color:       codec.ColorRejected,
	})

	replyEphemeral(s, i, "已拒绝该申请。")
}

// DeleteControlHandler asks for confirmation before removing an application.
// 申请人本人或高级管理可以删除。
func DeleteControlHandler(s *discordgo.Session, i *discordgo.InteractionCreate, id codec.ControlID) {
	actorID := i.Member.User.ID
	if actorID != id.RequesterID && !utils.IsAdmin(actorID, i.Member.Roles) {
		replyEphemeral(s, i, "只有申请人本人或高级管理可以删除申请。")
		return
	}

	session := model.DraftSession{
		App: model.Application{ChannelID: i.ChannelID, MessageID: i.Message.ID},
	}
	cacheID := utils.AddToCache(session)
	// 60秒未确认视为取消
	time.AfterFunc(60*time.Second, func() {
		utils.RemoveFromCache(cacheID)
	})

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "确认删除这份申请吗？60 秒内未确认将自动取消。",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							Label:    "确认删除",
							Style:    discordgo.DangerButton,
							CustomID: fmt.Sprintf("app_delconfirm:%s", cacheID),
						},
						discordgo.Button{
							Label:    "取消",
							Style:    discordgo.SecondaryButton,
							CustomID: fmt.Sprintf("app_delcancel:%s", cacheID),
						},
					},
				},
			},
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error sending delete confirmation: %v", err)
	}
}

// DeleteConfirmHandler removes the application message.
func DeleteConfirmHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	parts := strings.SplitN(i.MessageComponentData().CustomID, ":", 2)
	if len(parts) != 2 {
		return
	}
	session, found := utils.GetFromCache(parts[1])
	if !found {
		replyEphemeral(s, i, "确认已超时，删除已取消。")
		return
	}
	utils.RemoveFromCache(parts[1])

	if err := s.ChannelMessageDelete(session.App.ChannelID, session.App.MessageID); err != nil {
		log.Printf("Error deleting application message: %v", err)
		replyEphemeral(s, i, "删除申请消息失败。")
		return
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    "🗑️ 申请已删除。",
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		log.Printf("Error updating delete response: %v", err)
	}
}

// DeleteCancelHandler aborts the delete confirmation.
func DeleteCancelHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	parts := strings.SplitN(i.MessageComponentData().CustomID, ":", 2)
	if len(parts) == 2 {
		utils.RemoveFromCache(parts[1])
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    "删除已取消。",
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		log.Printf("Error updating cancel response: %v", err)
	}
}

// EditControlHandler re-opens the form on a pending application. The
// requester and any eligible moderator may edit.
func EditControlHandler(s *discordgo.Session, i *discordgo.InteractionCreate, id codec.ControlID) {
	actorID := i.Member.User.ID
	if actorID != id.RequesterID {
		requesterRoles := memberRoles(s, i.GuildID, id.RequesterID)
		if !utils.CanModerate(actorID, i.Member.Roles, id.RequesterID, requesterRoles) {
			replyEphemeral(s, i, "只有申请人本人或审核人员可以编辑申请。")
			return
		}
	}

	app, err := decodeTarget(s, i)
	if err != nil {
		replyEphemeral(s, i, "无法读取申请内容。")
		return
	}
	if app.Status.Terminal() {
		replyEphemeral(s, i, "已处理的申请无法编辑。")
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: fmt.Sprintf("app_editmodal:%s:%s", i.ChannelID, i.Message.ID),
			Title:    "编辑申请",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:  "app_name",
							Label:     "姓名",
							Style:     discordgo.TextInputShort,
							Value:     app.Name,
							Required:  true,
							MaxLength: 64,
						},
					},
				},
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:  "app_static",
							Label:     "编号",
							Style:     discordgo.TextInputShort,
							Value:     app.Static,
							Required:  true,
							MaxLength: 12,
						},
					},
				},
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:  "app_reason",
							Label:     "申请理由",
							Style:     discordgo.TextInputParagraph,
							Value:     app.Reason,
							Required:  true,
							MaxLength: 1000,
						},
					},
				},
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:  "app_extra",
							Label:     "补充信息",
							Style:     discordgo.TextInputParagraph,
							Value:     app.Extra,
							Required:  false,
							MaxLength: 1000,
						},
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("Error creating edit modal: %v", err)
	}
}

// EditModalHandler re-encodes the amended application onto the same message.
func EditModalHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	parts := strings.Split(data.CustomID, ":")
	if len(parts) != 3 {
		replyEphemeral(s, i, "数据格式错误。")
		return
	}
	channelID, messageID := parts[1], parts[2]

	msg, err := s.ChannelMessage(channelID, messageID)
	if err != nil {
		replyEphemeral(s, i, "申请消息已不存在。")
		return
	}
	app, err := codec.Decode(msg)
	if err != nil {
		replyEphemeral(s, i, "无法读取申请内容。")
		return
	}
	actorID := i.Member.User.ID
	if actorID != app.RequesterID {
		requesterRoles := memberRoles(s, i.GuildID, app.RequesterID)
		if !utils.CanModerate(actorID, i.Member.Roles, app.RequesterID, requesterRoles) {
			replyEphemeral(s, i, "只有申请人本人或审核人员可以编辑申请。")
			return
		}
	}
	if app.Status.Terminal() {
		replyEphemeral(s, i, "已处理的申请无法编辑。")
		return
	}

	static, valid := codec.NormalizeStatic(modalValue(data, "app_static"))
	if !valid {
		replyEphemeral(s, i, "编号格式无效：请输入 1-6 位数字。")
		return
	}
	app.Name = strings.TrimSpace(modalValue(data, "app_name"))
	app.Static = static
	app.Reason = strings.TrimSpace(modalValue(data, "app_reason"))
	app.Extra = strings.TrimSpace(modalValue(data, "app_extra"))

	_, err = s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel: channelID,
		ID:      messageID,
		Embeds:  &[]*discordgo.MessageEmbed{codec.Encode(app)},
	})
	if err != nil {
		log.Printf("Error editing application message: %v", err)
		replyEphemeral(s, i, "更新申请消息失败。")
		return
	}
	replyEphemeral(s, i, "✅ 申请已更新。")
}
