package application

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"garrison/codec"
	"garrison/model"
)

// PanelMessage builds the pinned panel for one department channel.
func PanelMessage(code string, dept model.Department) *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📋 %s 招募面板", dept.Name),
		Description: fmt.Sprintf(
			"欢迎申请加入 **%s**。\n\n"+
				"• 点击 **入队申请** 开始两步申请流程\n"+
				"• 已在其他部门服役请使用 **转调申请**\n"+
				"• 同一部门同时只能有一份待审核的申请",
			dept.Name),
		Color: dept.Color,
	}
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "入队申请",
					Style:    discordgo.PrimaryButton,
					CustomID: fmt.Sprintf("dept_join:%s", code),
					Emoji:    &discordgo.ComponentEmoji{Name: "📥"},
				},
				discordgo.Button{
					Label:    "转调申请",
					Style:    discordgo.SecondaryButton,
					CustomID: fmt.Sprintf("dept_transfer:%s", code),
					Emoji:    &discordgo.ComponentEmoji{Name: "🔄"},
				},
			},
		},
	}
	return &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	}
}

// moderationControls builds the persistent button row attached to a pending
// application. The custom IDs are deterministic, so a restarted process can
// rebuild the exact same row.
func moderationControls(code, requesterID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "通过",
					Style:    discordgo.SuccessButton,
					CustomID: codec.FormatControlID(code, codec.ActionApprove, requesterID),
				},
				discordgo.Button{
					Label:    "拒绝",
					Style:    discordgo.DangerButton,
					CustomID: codec.FormatControlID(code, codec.ActionReject, requesterID),
				},
				discordgo.Button{
					Label:    "删除",
					Style:    discordgo.SecondaryButton,
					CustomID: codec.FormatControlID(code, codec.ActionDelete, requesterID),
				},
				discordgo.Button{
					Label:    "编辑",
					Style:    discordgo.SecondaryButton,
					CustomID: codec.FormatControlID(code, codec.ActionEdit, requesterID),
				},
			},
		},
	}
}

// terminalControls is the single disabled button left on a decided message.
func terminalControls(status model.AppStatus, code, requesterID string) []discordgo.MessageComponent {
	label := "已处理"
	style := discordgo.SecondaryButton
	switch status {
	case model.StatusApproved:
		label = "已通过"
		style = discordgo.SuccessButton
	case model.StatusRejected:
		label = "已拒绝"
		style = discordgo.DangerButton
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    label,
					Style:    style,
					CustomID: codec.FormatControlID(code, codec.ActionApprove, requesterID),
					Disabled: true,
				},
			},
		},
	}
}

// replyEphemeral sends a simple ephemeral response.
func replyEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error sending ephemeral reply: %v", err)
	}
}

// modalValue extracts the value of one text input from a modal submission.
func modalValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, component := range data.Components {
		if actionRow, ok := component.(*discordgo.ActionsRow); ok {
			for _, comp := range actionRow.Components {
				if textInput, ok := comp.(*discordgo.TextInput); ok {
					if textInput.CustomID == customID {
						return textInput.Value
					}
				}
			}
		}
	}
	return ""
}

// memberRoles fetches a member's role IDs, returning nil when the member is
// not in the guild anymore.
func memberRoles(s *discordgo.Session, guildID, userID string) []string {
	member, err := s.State.Member(guildID, userID)
	if err == nil && member != nil {
		return member.Roles
	}
	member, err = s.GuildMember(guildID, userID)
	if err != nil {
		log.Printf("Failed to fetch member %s in guild %s: %v", userID, guildID, err)
		return nil
	}
	return member.Roles
}
