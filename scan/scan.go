// Package scan walks channel history to answer questions the bot keeps no
// database for: which departments a user already has a live application in.
// 消息即存档, 扫描频道就是查询数据库。
package scan

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"garrison/codec"
	"garrison/model"
)

// historyLimit is the maximum number of messages inspected per channel.
// Discord caps a single fetch at 100.
const historyLimit = 100

// HistoryFetcher is the slice of discordgo.Session used by the scanner,
// kept as an interface so tests can feed canned histories.
type HistoryFetcher interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
}

// hasEnabledControls reports whether a message still carries at least one
// clickable button. 按钮可点击 等价于 申请仍在处理中。
func hasEnabledControls(msg *discordgo.Message) bool {
	for _, comp := range msg.Components {
		row, ok := comp.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if btn, ok := inner.(*discordgo.Button); ok && !btn.Disabled {
				return true
			}
		}
	}
	return false
}

// ActiveDepartments returns the department codes in which the user currently
// has a pending application. A message counts as pending when it decodes to a
// record from this user and still has enabled controls attached.
func ActiveDepartments(f HistoryFetcher, requesterID string, depts map[string]model.Department) []string {
	var active []string
	for code, dept := range depts {
		if dept.ChannelID == "" {
			continue
		}
		msgs, err := f.ChannelMessages(dept.ChannelID, historyLimit, "", "", "")
		if err != nil {
			log.Printf("Failed to scan channel %s for department %s: %v", dept.ChannelID, code, err)
			continue
		}
		for _, msg := range msgs {
			app, err := codec.Decode(msg)
			if err != nil {
				continue
			}
			if app.RequesterID != requesterID {
				continue
			}
			if app.Status == model.StatusPending && hasEnabledControls(msg) {
				active = append(active, code)
				break
			}
		}
	}
	return active
}

// FindPending returns the user's pending application message in one channel,
// or nil when there is none.
func FindPending(f HistoryFetcher, channelID, requesterID string) (*model.Application, error) {
	msgs, err := f.ChannelMessages(channelID, historyLimit, "", "", "")
	if err != nil {
		return nil, err
	}
	for _, msg := range msgs {
		app, err := codec.Decode(msg)
		if err != nil {
			continue
		}
		if app.RequesterID == requesterID && app.Status == model.StatusPending && hasEnabledControls(msg) {
			return app, nil
		}
	}
	return nil, nil
}
