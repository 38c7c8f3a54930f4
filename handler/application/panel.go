package application

import (
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"garrison/config"
	"garrison/db"
	"garrison/scan"
	"garrison/utils"
)

// CreatePanelCommandHandler handles /dept-panel: posts and pins the panel
// for one department.
func CreatePanelCommandHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
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
				log.Printf("Panic in panel creation goroutine: %v", r)
				s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
					Content: utils.StringPtr("创建面板时发生内部错误。"),
				})
			}
		}()

		if !utils.IsAdmin(i.Member.User.ID, i.Member.Roles) {
			s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
				Content: utils.StringPtr("您没有权限执行此操作。"),
			})
			return
		}

		var code string
		for _, opt := range i.ApplicationCommandData().Options {
			if opt.Name == "department" {
				code = opt.StringValue()
			}
		}
		dept, ok := config.Department(code)
		if !ok {
			s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
				Content: utils.StringPtr("未知的部门代码。"),
			})
			return
		}
		if dept.ChannelID == "" {
			s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
				Content: utils.StringPtr("该部门未配置申请频道。"),
			})
			return
		}

		message, err := s.ChannelMessageSendComplex(dept.ChannelID, PanelMessage(code, dept))
		if err != nil {
			log.Printf("Error sending panel message: %v", err)
			s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
				Content: utils.StringPtr(fmt.Sprintf("创建面板时出错：%v", err)),
			})
			return
		}
		if err := s.ChannelMessagePin(message.ChannelID, message.ID); err != nil {
			log.Printf("Error pinning panel message: %v", err)
		}

		if err := utils.SavePanelState(panelStateFile, "dept:"+code, dept.ChannelID, message.ID); err != nil {
			log.Printf("Error saving panel state: %v", err)
			s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
				Content: utils.StringPtr(fmt.Sprintf("创建面板成功，但保存状态失败：%v", err)),
			})
			return
		}

		s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
			Content: utils.StringPtr(fmt.Sprintf("✅ %s 的招募面板已创建。", dept.Name)),
		})
	}()
}

// StatusCommandHandler handles /dept-status: shows the caller their active
// applications and personnel record.
func StatusCommandHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
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
				log.Printf("Panic in status goroutine: %v", r)
			}
		}()

		userID := i.Member.User.ID
		var lines []string

		active := scan.ActiveDepartments(s, userID, config.Cfg.Departments)
		if len(active) == 0 {
			lines = append(lines, "**待审核申请：**无")
		} else {
			names := make([]string, 0, len(active))
			for _, code := range active {
				if dept, ok := config.Department(code); ok {
					names = append(names, dept.Name)
				}
			}
			lines = append(lines, fmt.Sprintf("**待审核申请：**%s", strings.Join(names, "、")))
		}

		person, err := db.GetPersonnel(userID)
		if err != nil {
			log.Printf("Error loading personnel record for %s: %v", userID, err)
		}
		if person == nil {
			lines = append(lines, "**人事档案：**未登记")
		} else {
			status := "在役"
			if person.IsDismissed {
				status = "已退役"
			}
			lines = append(lines, fmt.Sprintf("**人事档案：**%s · 编号 %s · %s (%s)",
				person.Name, person.Static, person.Department, status))
		}

		s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
			Embeds: &[]*discordgo.MessageEmbed{{
				Title:       "📋 我的状态",
				Description: strings.Join(lines, "\n"),
				Color:       0x3498DB,
			}},
		})
	}()
}
