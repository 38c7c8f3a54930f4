package application

import (
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

// Restore rebuilds everything the process lost on restart: the department
// panels and the moderation controls on still-pending applications.
// 消息即存档, 重启恢复只需要重读频道。
func Restore(s *discordgo.Session) {
	restoreAll(s, s.State.User.ID)
}

func restoreAll(s restoreSession, botID string) {
	for code, dept := range config.Cfg.Departments {
		if dept.ChannelID == "" {
			continue
		}
		restorePanel(s, botID, code, dept)
		restoreControls(s, code, dept)
	}
}

// restorePanel makes sure the department channel has exactly one live panel.
func restorePanel(s restoreSession, botID, code string, dept model.Department) {
	stateKey := "dept:" + code

	// 1. 先按记录的位置找
	state, err := utils.LoadPanelState(panelStateFile, stateKey)
	if err != nil {
		log.Printf("Error loading panel state for %s: %v", code, err)
	}
	if state != nil {
		if _, err := fetchMessageWithRetry(s, state.ChannelID, state.MessageID); err == nil {
			return
		}
	}

	// 2. 再扫一遍置顶消息, 面板可能还在但状态文件丢了
	pinned, err := s.ChannelMessagesPinned(dept.ChannelID)
	if err != nil {
		log.Printf("Error fetching pins for channel %s: %v", dept.ChannelID, err)
	}
	for _, msg := range pinned {
		if msg.Author == nil || msg.Author.ID != botID {
			continue
		}
		if len(msg.Embeds) > 0 && strings.Contains(msg.Embeds[0].Title, "招募面板") {
			if err := utils.SavePanelState(panelStateFile, stateKey, msg.ChannelID, msg.ID); err != nil {
				log.Printf("Error saving panel state for %s: %v", code, err)
			}
			return
		}
	}

	// 3. 都没有, 创建新面板并置顶
	message, err := s.ChannelMessageSendComplex(dept.ChannelID, PanelMessage(code, dept))
	if err != nil {
		log.Printf("Error creating panel for %s: %v", code, err)
		return
	}
	if err := s.ChannelMessagePin(message.ChannelID, message.ID); err != nil {
		log.Printf("Error pinning panel for %s: %v", code, err)
	}
	if err := utils.SavePanelState(panelStateFile, stateKey, message.ChannelID, message.ID); err != nil {
		log.Printf("Error saving panel state for %s: %v", code, err)
	}
	log.Printf("Recreated panel for department %s", code)
}

// restoreControls re-attaches fresh moderation controls to every pending
// application in the channel. The control IDs are deterministic, so the new
// buttons are functionally identical to the lost ones.
func restoreControls(s restoreSession, code string, dept model.Department) {
	msgs, err := fetchHistoryWithRetry(s, dept.ChannelID)
	if err != nil {
		log.Printf("Error fetching history for channel %s: %v", dept.ChannelID, err)
		return
	}

	var restored int
	for _, msg := range msgs {
		app, err := codec.Decode(msg)
		if err != nil {
			continue
		}
		if app.Status != model.StatusPending {
			continue
		}
		controls := moderationControls(code, app.RequesterID)
		_, err = s.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel:    msg.ChannelID,
			ID:         msg.ID,
			Components: &controls,
		})
		if err != nil {
			// 单条失败只跳过, 不影响其余消息
			log.Printf("Error restoring controls on message %s: %v", msg.ID, err)
			continue
		}
		restored++
	}
	if restored > 0 {
		log.Printf("Restored controls on %d pending applications in %s", restored, code)
	}
}

// fetchHistoryWithRetry fetches channel history, retrying once on transient
// failure.
func fetchHistoryWithRetry(s restoreSession, channelID string) ([]*discordgo.Message, error) {
	msgs, err := s.ChannelMessages(channelID, 100, "", "", "")
	if err == nil {
		return msgs, nil
	}
	time.Sleep(2 * time.Second)
	return s.ChannelMessages(channelID, 100, "", "", "")
}

// fetchMessageWithRetry fetches a single message, retrying once on transient
// failure. 探测失败会触发重建面板, 所以不能因一次网络抖动就误判面板丢失。
func fetchMessageWithRetry(s restoreSession, channelID, messageID string) (*discordgo.Message, error) {
	msg, err := s.ChannelMessage(channelID, messageID)
	if err == nil {
		return msg, nil
	}
	time.Sleep(2 * time.Second)
	return s.ChannelMessage(channelID, messageID)
}
