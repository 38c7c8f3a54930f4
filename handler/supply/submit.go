package supply

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"garrison/codec"
	"garrison/config"
	"garrison/utils"
	"garrison/warehouse"
)

// supplyEmbed renders the cart as a submission record. 与部门申请一样,
// 这条消息就是唯一存档, 页脚与状态字段必须能被解码器读回。
func supplyEmbed(userID string, cart *warehouse.Cart, createdAt time.Time) *discordgo.MessageEmbed {
	grouped := make(map[string][]warehouse.Item)
	for _, item := range cart.Items {
		grouped[item.Category] = append(grouped[item.Category], item)
	}
	categories := make([]string, 0, len(grouped))
	for category := range grouped {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	fields := make([]*discordgo.MessageEmbedField, 0, len(categories)+2)
	holder := cart.Items[len(cart.Items)-1].Holder
	if holder.Name != "" {
		title := holder.Position
		if title == "" {
			title = holder.Rank
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "📋 人事信息",
			Value: fmt.Sprintf("**姓名：**%s\n**编号：**%s\n**职务：**%s",
				holder.Name, holder.Static, title),
		})
	}
	for _, category := range categories {
		var b strings.Builder
		for _, item := range grouped[category] {
			fmt.Fprintf(&b, "%s ×%d\n", item.Name, item.Quantity)
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "📦 " + category,
			Value:  b.String(),
			Inline: true,
		})
	}
	fields = append(fields, &discordgo.MessageEmbedField{
		Name:  "📊 状态",
		Value: "⏳ 待审核",
	})

	return &discordgo.MessageEmbed{
		Title:       "📦 补给申请",
		Description: fmt.Sprintf("提交人：<@%s>", userID),
		Color:       codec.ColorSupply,
		Timestamp:   createdAt.UTC().Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: "申请人ID: " + userID},
		Fields:      fields,
	}
}

// supplyControls is the moderation row on a supply record.
func supplyControls(userID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "发放",
					Style:    discordgo.SuccessButton,
					CustomID: codec.FormatControlID("wh", ActionIssue, userID),
				},
				discordgo.Button{
					Label:    "驳回",
					Style:    discordgo.DangerButton,
					CustomID: codec.FormatControlID("wh", ActionDeny, userID),
				},
			},
		},
	}
}

// canBypassCooldown 军需官和管理不受冷却限制
func canBypassCooldown(userID string, roles []string) bool {
	return utils.IsAdmin(userID, roles) || utils.IsModerator(userID, roles)
}

// SubmitCartHandler posts the requisition after the cooldown check.
func SubmitCartHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		log.Printf("Error sending deferred response: %v", err)
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Panic in supply submit goroutine: %v", r)
			}
		}()

		userID := i.Member.User.ID
		edit := func(content string) {
			_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
				Content:    utils.StringPtr(content),
				Embeds:     &[]*discordgo.MessageEmbed{},
				Components: &[]discordgo.MessageComponent{},
			})
			if err != nil {
				log.Printf("Error editing supply submit response: %v", err)
			}
		}

		cart := Carts.Get(userID)
		if cart == nil || len(cart.Items) == 0 {
			edit("清单是空的，没有可提交的内容。")
			return
		}
		channelID := config.Cfg.Warehouse.SubmissionChannelID
		if channelID == "" {
			edit("配置错误：未设置补给提交频道。")
			return
		}

		window := time.Duration(config.Cfg.Warehouse.CooldownHours) * time.Hour
		if window > 0 && !canBypassCooldown(userID, i.Member.Roles) {
			allowed, next, err := warehouse.Check(s, channelID, userID, window, time.Now().UTC())
			if err != nil {
				log.Printf("Error checking supply cooldown for %s: %v", userID, err)
				edit("无法检查冷却状态，请稍后重试。")
				return
			}
			if !allowed {
				edit(fmt.Sprintf("⏳ 你仍在补给冷却期内，<t:%d:R> 后可再次申领。", next.Unix()))
				return
			}
		}

		now := time.Now().UTC()
		message, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
			Embeds:     []*discordgo.MessageEmbed{supplyEmbed(userID, cart, now)},
			Components: supplyControls(userID),
		})
		if err != nil {
			log.Printf("Error publishing supply request: %v", err)
			edit("提交补给申请失败，请稍后重试。")
			return
		}

		sendSupplyPing(s, cart, message)
		Carts.Clear(userID)
		edit("✅ 补给申请已提交，请等待军需官处理。")
	}()
}

// sendSupplyPing notifies the roles responsible for the requested categories.
func sendSupplyPing(s *discordgo.Session, cart *warehouse.Cart, supplyMsg *discordgo.Message) {
	seen := make(map[string]bool)
	var roleIDs []string
	for _, item := range cart.Items {
		for _, roleID := range config.Cfg.Warehouse.PingRoleIDs[item.Category] {
			if !seen[roleID] {
				seen[roleID] = true
				roleIDs = append(roleIDs, roleID)
			}
		}
	}
	if len(roleIDs) == 0 {
		return
	}
	sort.Strings(roleIDs)

	mentions := make([]string, 0, len(roleIDs))
	for _, roleID := range roleIDs {
		mentions = append(mentions, fmt.Sprintf("<@&%s>", roleID))
	}
	_, err := s.ChannelMessageSendComplex(supplyMsg.ChannelID, &discordgo.MessageSend{
		Content: fmt.Sprintf("%s 有新的补给申请待处理", strings.Join(mentions, " ")),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Roles: roleIDs,
		},
		Reference: supplyMsg.Reference(),
	})
	if err != nil {
		log.Printf("Error sending supply ping: %v", err)
	}
}
