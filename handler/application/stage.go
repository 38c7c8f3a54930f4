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
	"garrison/scan"
	"garrison/utils"
)

// DeptButtonHandler opens the first stage modal for a department panel
// button. 按钮ID形如 dept_join:{code} / dept_transfer:{code}
func DeptButtonHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	parts := strings.SplitN(customID, ":", 2)
	if len(parts) != 2 {
		return
	}
	kind := model.KindJoin
	if parts[0] == "dept_transfer" {
		kind = model.KindTransfer
	}
	code := parts[1]
	dept, ok := config.Department(code)
	if !ok {
		replyEphemeral(s, i, "该部门未配置，请联系管理员。")
		return
	}

	// 开表单前先查本频道, 已有待审核申请就不再放新表单
	if pending, err := scan.FindPending(s, dept.ChannelID, i.Member.User.ID); err == nil && pending != nil {
		replyEphemeral(s, i, fmt.Sprintf("你在 **%s** 已有待审核的申请，请等待处理完成后再提交。", dept.Name))
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: fmt.Sprintf("app_stage1:%s:%s", code, kind),
			Title:    fmt.Sprintf("%s · 申请第一步", dept.Name),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "app_name",
							Label:       "姓名",
							Style:       discordgo.TextInputShort,
							Placeholder: "角色全名, 例如 Ivan Petrov",
							Required:    true,
							MaxLength:   64,
						},
					},
				},
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "app_static",
							Label:       "编号",
							Style:       discordgo.TextInputShort,
							Placeholder: "1-6位数字, 例如 123456",
							Required:    true,
							MaxLength:   12,
						},
					},
				},
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "app_document",
							Label:       "证明文件链接",
							Style:       discordgo.TextInputShort,
							Placeholder: "护照/档案截图链接 (可留空)",
							Required:    false,
						},
					},
				},
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "app_reason",
							Label:       "申请理由",
							Style:       discordgo.TextInputParagraph,
							Required:    true,
							MaxLength:   1000,
						},
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("Error creating stage1 modal: %v", err)
	}
}

// Stage1ModalHandler validates the first stage and shows the midway review.
func Stage1ModalHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	parts := strings.Split(data.CustomID, ":")
	if len(parts) != 3 {
		replyEphemeral(s, i, "数据格式错误，请重新开始申请流程。")
		return
	}
	code, kind := parts[1], model.AppKind(parts[2])
	dept, ok := config.Department(code)
	if !ok {
		replyEphemeral(s, i, "该部门未配置，请联系管理员。")
		return
	}

	static, valid := codec.NormalizeStatic(modalValue(data, "app_static"))
	if !valid {
		replyEphemeral(s, i, "编号格式无效：请输入 1-6 位数字。")
		return
	}

	app := model.Application{
		RequesterID: i.Member.User.ID,
		Department:  dept.Name,
		Kind:        kind,
		Name:        strings.TrimSpace(modalValue(data, "app_name")),
		Static:      static,
		DocumentURL: strings.TrimSpace(modalValue(data, "app_document")),
		Reason:      strings.TrimSpace(modalValue(data, "app_reason")),
		Status:      model.StatusDraft1,
	}
	cacheID := utils.AddToCache(model.DraftSession{App: app, DeptCode: code})

	embed := &discordgo.MessageEmbed{
		Title: "第一步已完成",
		Description: fmt.Sprintf("**姓名：**%s\n**编号：**%s\n\n点击下方按钮继续填写 OOC 信息。",
			app.Name, app.Static),
		Color: dept.Color,
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							Label:    "继续填写",
							Style:    discordgo.PrimaryButton,
							CustomID: fmt.Sprintf("app_next:%s", cacheID),
							Emoji:    &discordgo.ComponentEmoji{Name: "✍️"},
						},
						discordgo.Button{
							Label:    "取消",
							Style:    discordgo.DangerButton,
							CustomID: fmt.Sprintf("app_cancel:%s", cacheID),
							Emoji:    &discordgo.ComponentEmoji{Name: "❌"},
						},
					},
				},
			},
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error sending stage1 review: %v", err)
	}
}

// NextButtonHandler opens the second stage modal.
func NextButtonHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	parts := strings.SplitN(i.MessageComponentData().CustomID, ":", 2)
	if len(parts) != 2 {
		return
	}
	cacheID := parts[1]
	if _, found := utils.GetFromCache(cacheID); !found {
		replyEphemeral(s, i, "会话已过期，请重新开始申请流程。")
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: fmt.Sprintf("app_stage2:%s", cacheID),
			Title:    "申请第二步 · OOC 信息",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "app_ooc_name",
							Label:       "OOC昵称",
							Style:       discordgo.TextInputShort,
							Required:    false,
							MaxLength:   64,
						},
					},
				},
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "app_ooc_age",
							Label:       "年龄",
							Style:       discordgo.TextInputShort,
							Required:    false,
							MaxLength:   8,
						},
					},
				},
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "app_extra",
							Label:       "补充信息",
							Style:       discordgo.TextInputParagraph,
							Placeholder: "在线时段、过往经历等 (可留空)",
							Required:    false,
							MaxLength:   1000,
						},
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("Error creating stage2 modal: %v", err)
	}
}

// Stage2ModalHandler stores the second stage and shows the final review.
func Stage2ModalHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	parts := strings.SplitN(data.CustomID, ":", 2)
	if len(parts) != 2 {
		return
	}
	cacheID := parts[1]
	session, found := utils.GetFromCache(cacheID)
	if !found {
		replyEphemeral(s, i, "会话已过期，请重新开始申请流程。")
		return
	}

	session.App.OOCName = strings.TrimSpace(modalValue(data, "app_ooc_name"))
	session.App.OOCAge = strings.TrimSpace(modalValue(data, "app_ooc_age"))
	session.App.Extra = strings.TrimSpace(modalValue(data, "app_extra"))
	session.App.Status = model.StatusDraft2
	utils.UpdateCache(cacheID, session)

	preview := session.App
	preview.Status = model.StatusPending
	preview.CreatedAt = time.Now().UTC()
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "请确认以下内容无误，然后提交申请：",
			Embeds:  []*discordgo.MessageEmbed{codec.Encode(&preview)},
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							Label:    "提交申请",
							Style:    discordgo.SuccessButton,
							CustomID: fmt.Sprintf("app_submit:%s", cacheID),
							Emoji:    &discordgo.ComponentEmoji{Name: "✅"},
						},
						discordgo.Button{
							Label:    "取消",
							Style:    discordgo.DangerButton,
							CustomID: fmt.Sprintf("app_cancel:%s", cacheID),
							Emoji:    &discordgo.ComponentEmoji{Name: "❌"},
						},
					},
				},
			},
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error sending final review: %v", err)
	}
}

// SubmitButtonHandler publishes the application to the department channel.
func SubmitButtonHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	parts := strings.SplitN(i.MessageComponentData().CustomID, ":", 2)
	if len(parts) != 2 {
		return
	}
	cacheID := parts[1]

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
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
				log.Printf("Panic in application submit goroutine: %v", r)
				s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
					Content: utils.StringPtr("提交申请时发生内部错误。"),
				})
			}
		}()

		session, found := utils.GetFromCache(cacheID)
		if !found {
			s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
				Content: utils.StringPtr("会话已过期，请重新开始申请流程。"),
			})
			return
		}
		code := session.DeptCode
		dept, ok := config.Department(code)
		if !ok {
			s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
				Content: utils.StringPtr("该部门未配置，请联系管理员。"),
			})
			return
		}

		// 提交前重新扫描: 任何部门存在活跃申请都不允许再提交
		active := scan.ActiveDepartments(s, session.App.RequesterID, config.Cfg.Departments)
		if len(active) > 0 {
			names := make([]string, 0, len(active))
			for _, c := range active {
				if d, ok := config.Department(c); ok {
					names = append(names, d.Name)
				}
			}
			s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
				Content: utils.StringPtr(fmt.Sprintf(
					"你在以下部门已有待审核的申请：%s。请等待处理完成后再提交。",
					strings.Join(names, "、"))),
			})
			return
		}

		app := session.App
		app.Status = model.StatusPending
		app.CreatedAt = time.Now().UTC()

		message, err := s.ChannelMessageSendComplex(dept.ChannelID, &discordgo.MessageSend{
			Embeds:     []*discordgo.MessageEmbed{codec.Encode(&app)},
			Components: moderationControls(code, app.RequesterID),
		})
		if err != nil {
			log.Printf("Error publishing application: %v", err)
			s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
				Content: utils.StringPtr("发布申请失败，请稍后重试。"),
			})
			return
		}

		sendReviewPing(s, dept, message)

		utils.RemoveFromCache(cacheID)
		s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
			Content: utils.StringPtr("✅ 申请已提交，请等待审核。"),
		})
	}()
}

// sendReviewPing notifies the reviewer roles about a new application.
func sendReviewPing(s *discordgo.Session, dept model.Department, appMsg *discordgo.Message) {
	if len(dept.PingRoleIDs) == 0 {
		return
	}
	mentions := make([]string, 0, len(dept.PingRoleIDs))
	for _, roleID := range dept.PingRoleIDs {
		mentions = append(mentions, fmt.Sprintf("<@&%s>", roleID))
	}
	_, err := s.ChannelMessageSendComplex(appMsg.ChannelID, &discordgo.MessageSend{
		Content: fmt.Sprintf("%s 有新的申请待审核", strings.Join(mentions, " ")),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Roles: dept.PingRoleIDs,
		},
		Reference: appMsg.Reference(),
	})
	if err != nil {
		log.Printf("Error sending review ping: %v", err)
	}
}

// CancelButtonHandler drops the draft session.
func CancelButtonHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	parts := strings.SplitN(i.MessageComponentData().CustomID, ":", 2)
	if len(parts) == 2 {
		utils.RemoveFromCache(parts[1])
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    "申请已取消。",
			Embeds:     []*discordgo.MessageEmbed{},
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		log.Printf("Error updating cancel response: %v", err)
	}
}
