package codec

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"garrison/model"
)

// 消息即存档: 频道里的申请消息本身就是唯一的数据源。
// Encode 把申请完整写入 embed, Decode 从 embed 无损还原。

const (
	footerMarker = "申请人ID: "
	placeholder  = "未填写"

	fieldPersonnel = "📋 人事信息"
	fieldReason    = "💭 申请理由"
	fieldOOC       = "👤 OOC信息"
	fieldExtra     = "ℹ️ 补充信息"
	fieldStatus    = "📊 状态"
	fieldRejectWhy = "📝 拒绝理由"
	fieldDecided   = "⏰ 处理时间"

	statusPending  = "⏳ 待审核"
	statusApproved = "✅ 已通过"
	statusRejected = "❌ 已拒绝"
)

// Embed colors per application state.
const (
	ColorPending  = 0x3498DB
	ColorApproved = 0x2ECC71
	ColorRejected = 0xE74C3C
	ColorSupply   = 0xE67E22
)

// ErrNoRecord marks a message that does not carry an application record.
var ErrNoRecord = errors.New("codec: message carries no application record")

var mentionRe = regexp.MustCompile(`<@!?(\d+)>`)

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}

func fromPlaceholder(s string) string {
	if s == placeholder {
		return ""
	}
	return s
}

// Encode renders an application into an embed that Decode can read back.
func Encode(app *model.Application) *discordgo.MessageEmbed {
	var title string
	switch app.Kind {
	case model.KindTransfer:
		title = fmt.Sprintf("🔄 转调申请 · %s", app.Department)
	case model.KindSupply:
		title = "📦 补给申请"
		if app.Department != "" {
			title = fmt.Sprintf("📦 补给申请 · %s", app.Department)
		}
	default:
		title = fmt.Sprintf("📥 入队申请 · %s", app.Department)
	}

	doc := placeholder
	if app.DocumentURL != "" {
		doc = fmt.Sprintf("[查看文件](%s)", app.DocumentURL)
	}
	personnel := fmt.Sprintf("**姓名：**%s\n**编号：**%s\n**证明文件：**%s",
		orPlaceholder(app.Name), orPlaceholder(app.Static), doc)

	ooc := fmt.Sprintf("**OOC昵称：**%s\n**年龄：**%s",
		orPlaceholder(app.OOCName), orPlaceholder(app.OOCAge))

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: fmt.Sprintf("提交人：<@%s>", app.RequesterID),
		Color:       ColorPending,
		Timestamp:   app.CreatedAt.UTC().Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: footerMarker + app.RequesterID},
		Fields: []*discordgo.MessageEmbedField{
			{Name: fieldPersonnel, Value: personnel, Inline: false},
			{Name: fieldReason, Value: orPlaceholder(app.Reason), Inline: false},
			{Name: fieldOOC, Value: ooc, Inline: true},
			{Name: fieldExtra, Value: orPlaceholder(app.Extra), Inline: true},
		},
	}

	switch app.Status {
	case model.StatusApproved:
		embed.Color = ColorApproved
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: fieldStatus, Value: fmt.Sprintf("%s <@%s>", statusApproved, app.DecidedBy),
		})
	case model.StatusRejected:
		embed.Color = ColorRejected
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: fieldStatus, Value: fmt.Sprintf("%s <@%s>", statusRejected, app.DecidedBy),
		})
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: fieldRejectWhy, Value: orPlaceholder(app.RejectReason),
		})
	default:
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: fieldStatus, Value: statusPending,
		})
	}
	if !app.DecidedAt.IsZero() {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: fieldDecided, Value: fmt.Sprintf("<t:%d:R>", app.DecidedAt.Unix()),
		})
	}
	return embed
}

// parseKVLine parses a single "**label：**value" line.
func parseKVLine(line string) (label, value string, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "**") {
		return "", "", false
	}
	rest := line[2:]
	sep := strings.Index(rest, "：**")
	if sep < 0 {
		sep = strings.Index(rest, ":**")
		if sep < 0 {
			return "", "", false
		}
		return strings.TrimSpace(rest[:sep]), strings.TrimSpace(rest[sep+len(":**"):]), true
	}
	return strings.TrimSpace(rest[:sep]), strings.TrimSpace(rest[sep+len("：**"):]), true
}

var (
	docLinkRe = regexp.MustCompile(`\[.*?\]\((.+?)\)`)
	relTimeRe = regexp.MustCompile(`<t:(\d+):`)
)

func stripEmoji(name string) string {
	fields := strings.Fields(name)
	if len(fields) > 1 {
		return strings.Join(fields[1:], " ")
	}
	return name
}

// Decode reconstructs the application from a rendered message. It is the
// inverse of Encode, with empty optional fields surviving the round trip.
func Decode(msg *discordgo.Message) (*model.Application, error) {
	if len(msg.Embeds) == 0 {
		return nil, ErrNoRecord
	}
	embed := msg.Embeds[0]
	if embed.Footer == nil || !strings.HasPrefix(embed.Footer.Text, footerMarker) {
		return nil, ErrNoRecord
	}

	app := &model.Application{
		RequesterID: strings.TrimSpace(strings.TrimPrefix(embed.Footer.Text, footerMarker)),
		ChannelID:   msg.ChannelID,
		MessageID:   msg.ID,
	}
	if app.RequesterID == "" {
		if m := mentionRe.FindStringSubmatch(embed.Description); m != nil {
			app.RequesterID = m[1]
		} else {
			return nil, ErrNoRecord
		}
	}

	switch {
	case strings.Contains(embed.Title, "转调"):
		app.Kind = model.KindTransfer
	case strings.Contains(embed.Title, "补给"):
		app.Kind = model.KindSupply
	default:
		app.Kind = model.KindJoin
	}
	if idx := strings.LastIndex(embed.Title, "· "); idx >= 0 {
		app.Department = strings.TrimSpace(embed.Title[idx+len("· "):])
	}
	if embed.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, embed.Timestamp); err == nil {
			app.CreatedAt = ts.UTC()
		}
	}

	app.Status = model.StatusPending
	statusSeen := false
	for _, f := range embed.Fields {
		name := stripEmoji(f.Name)
		switch {
		case strings.Contains(name, "人事信息"):
			for _, line := range strings.Split(f.Value, "\n") {
				label, value, ok := parseKVLine(line)
				if !ok {
					continue
				}
				switch label {
				case "姓名", "名字":
					app.Name = fromPlaceholder(value)
				case "编号", "静态编号":
					app.Static = fromPlaceholder(value)
				case "证明文件", "文件":
					if m := docLinkRe.FindStringSubmatch(value); m != nil {
						app.DocumentURL = m[1]
					}
				}
			}
		case strings.Contains(name, "申请理由") || strings.Contains(name, "动机"):
			app.Reason = fromPlaceholder(strings.TrimSpace(f.Value))
		case strings.Contains(name, "OOC"):
			for _, line := range strings.Split(f.Value, "\n") {
				label, value, ok := parseKVLine(line)
				if !ok {
					continue
				}
				switch label {
				case "OOC昵称", "昵称":
					app.OOCName = fromPlaceholder(value)
				case "年龄":
					app.OOCAge = fromPlaceholder(value)
				}
			}
		case strings.Contains(name, "补充信息") || strings.Contains(name, "附加信息"):
			app.Extra = fromPlaceholder(strings.TrimSpace(f.Value))
		case strings.Contains(name, "状态"):
			statusSeen = true
			val := strings.TrimSpace(f.Value)
			switch {
			case strings.Contains(val, "已通过"):
				app.Status = model.StatusApproved
			case strings.Contains(val, "已拒绝"):
				app.Status = model.StatusRejected
			default:
				app.Status = model.StatusPending
			}
			if m := mentionRe.FindStringSubmatch(val); m != nil {
				app.DecidedBy = m[1]
			}
		case strings.Contains(name, "拒绝理由"):
			app.RejectReason = fromPlaceholder(strings.TrimSpace(f.Value))
		case strings.Contains(name, "处理时间"):
			if m := relTimeRe.FindStringSubmatch(f.Value); m != nil {
				if unix, err := strconv.ParseInt(m[1], 10, 64); err == nil {
					app.DecidedAt = time.Unix(unix, 0).UTC()
				}
			}
		}
	}

	// 旧消息可能缺少状态字段, 退而按颜色判断。
	if !statusSeen {
		switch embed.Color {
		case ColorApproved:
			app.Status = model.StatusApproved
		case ColorRejected:
			app.Status = model.StatusRejected
		}
	}
	return app, nil
}

// IsRecord reports whether the message carries an application record without
// fully decoding it.
func IsRecord(msg *discordgo.Message) bool {
	if len(msg.Embeds) == 0 {
		return false
	}
	f := msg.Embeds[0].Footer
	return f != nil && strings.HasPrefix(f.Text, footerMarker)
}
