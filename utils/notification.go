package utils

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

// DMSender 是私信所需的最小会话接口, *discordgo.Session 满足它。
type DMSender interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// SendDM delivers a direct message to a user, swallowing delivery failures.
// 用户关闭私信时 Discord 返回 Forbidden, 这不应影响审批流程。
func SendDM(s DMSender, userID string, embed *discordgo.MessageEmbed) {
	channel, err := s.UserChannelCreate(userID)
	if err != nil {
		log.Printf("Failed to open DM channel for user %s: %v", userID, err)
		return
	}
	if _, err := s.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
		log.Printf("Failed to send DM to user %s: %v", userID, err)
	}
}
