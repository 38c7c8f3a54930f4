// Package supply wires the warehouse requisition flow to Discord: the
// warehouse panel, the cart building interactions and supply moderation.
package supply

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

var panelStateFile = "data/panels.json"

// restoreSession 覆盖重启恢复用到的会话操作, *discordgo.Session 满足它。
type restoreSession interface {
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessagesPinned(channelID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessagePin(channelID, messageID string, options ...discordgo.RequestOption) error
}

// PanelMessage builds the pinned warehouse panel.
func PanelMessage() *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{
		Title: "📦 军需仓库",
		Description: "点击下方按钮开始申领物资。\n\n" +
			"• 数量上限按你的职务或军衔确定\n" +
			"• 提交后进入冷却期, 冷却结束前无法再次申领\n" +
			"• 被驳回的申请不占用冷却",
		Color: 0xE67E22,
	}
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "申领物资",
						Style:    discordgo.PrimaryButton,
						CustomID: "wh_open",
						Emoji:    &discordgo.ComponentEmoji{Name: "📦"},
					},
				},
			},
		},
	}
}

// CreatePanelCommandHandler handles /warehouse-panel.
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
				log.Printf("Panic in warehouse panel goroutine: %v", r)
			}
		}()

		if !utils.IsAdmin(i.Member.User.ID, i.Member.Roles) {
			s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
				Content: utils.StringPtr("您没有权限执行此操作。"),
			})
			return
		}
		channelID := config.Cfg.Warehouse.ChannelID
		if channelID == "" {
			s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
				Content: utils.StringPtr("配置错误：未设置仓库频道 ID。"),
			})
			return
		}

		message, err := s.ChannelMessageSendComplex(channelID, PanelMessage())
		if err != nil {
			log.Printf("Error sending warehouse panel: %v", err)
			s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
				Content: utils.StringPtr(fmt.Sprintf("创建面板时出错：%v", err)),
			})
			return
		}
		if err := s.ChannelMessagePin(message.ChannelID, message.ID); err != nil {
			log.Printf("Error pinning warehouse panel: %v", err)
		}
		if err := utils.SavePanelState(panelStateFile, "warehouse", channelID, message.ID); err != nil {
			log.Printf("Error saving warehouse panel state: %v", err)
		}

		s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
			Content: utils.StringPtr("✅ 仓库面板已创建。"),
		})
	}()
}

// RestorePanel makes sure the warehouse channel has a live panel after a
// restart.
func RestorePanel(s *discordgo.Session) {
	restorePanel(s, s.State.User.ID)
}

func restorePanel(s restoreSession, botID string) {
	channelID := config.Cfg.Warehouse.ChannelID
	if channelID == "" {
		return
	}

	state, err := utils.LoadPanelState(panelStateFile, "warehouse")
	if err != nil {
		log.Printf("Error loading warehouse panel state: %v", err)
	}
	if state != nil {
		if _, err := fetchPanelWithRetry(s, state.ChannelID, state.MessageID); err == nil {
			return
		}
	}

	pinned, err := s.ChannelMessagesPinned(channelID)
	if err != nil {
		log.Printf("Error fetching pins for warehouse channel: %v", err)
	}
	for _, msg := range pinned {
		if msg.Author == nil || msg.Author.ID != botID {
			continue
		}
		if len(msg.Embeds) > 0 && strings.Contains(msg.Embeds[0].Title, "军需仓库") {
			if err := utils.SavePanelState(panelStateFile, "warehouse", msg.ChannelID, msg.ID); err != nil {
				log.Printf("Error saving warehouse panel state: %v", err)
			}
			return
		}
	}

	message, err := s.ChannelMessageSendComplex(channelID, PanelMessage())
	if err != nil {
		log.Printf("Error recreating warehouse panel: %v", err)
		return
	}
	if err := s.ChannelMessagePin(message.ChannelID, message.ID); err != nil {
		log.Printf("Error pinning warehouse panel: %v", err)
	}
	if err := utils.SavePanelState(panelStateFile, "warehouse", message.ChannelID, message.ID); err != nil {
		log.Printf("Error saving warehouse panel state: %v", err)
	}
	log.Printf("Recreated warehouse panel")
}

// RestoreControls re-attaches moderation buttons to pending supply records
// after a restart.
func RestoreControls(s *discordgo.Session) {
	restoreControls(s)
}

func restoreControls(s restoreSession) {
	channelID := config.Cfg.Warehouse.SubmissionChannelID
	if channelID == "" {
		return
	}
	msgs, err := s.ChannelMessages(channelID, 100, "", "", "")
	if err != nil {
		// 瞬时失败重试一次
		time.Sleep(2 * time.Second)
		msgs, err = s.ChannelMessages(channelID, 100, "", "", "")
	}
	if err != nil {
		log.Printf("Error fetching supply channel history: %v", err)
		return
	}

	var restored int
	for _, msg := range msgs {
		app, err := codec.Decode(msg)
		if err != nil {
			continue
		}
		if app.Kind != model.KindSupply || app.Status != model.StatusPending {
			continue
		}
		controls := supplyControls(app.RequesterID)
		_, err = s.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel:    msg.ChannelID,
			ID:         msg.ID,
			Components: &controls,
		})
		if err != nil {
			log.Printf("Error restoring supply controls on message %s: %v", msg.ID, err)
			continue
		}
		restored++
	}
	if restored > 0 {
		log.Printf("Restored controls on %d pending supply requests", restored)
	}
}

// fetchPanelWithRetry fetches the stored panel message, retrying once on
// transient failure. 探测失败会触发重建面板, 不能因一次网络抖动就误判丢失。
func fetchPanelWithRetry(s restoreSession, channelID, messageID string) (*discordgo.Message, error) {
	msg, err := s.ChannelMessage(channelID, messageID)
	if err == nil {
		return msg, nil
	}
	time.Sleep(2 * time.Second)
	return s.ChannelMessage(channelID, messageID)
}
