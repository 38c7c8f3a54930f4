package supply

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"garrison/config"
	"garrison/db"
	"garrison/model"
	"garrison/utils"
	"garrison/warehouse"
)

// Carts holds every live requisition cart. 闲置30分钟后由定时任务清理。
var Carts = warehouse.NewStore(30 * time.Minute)

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

// categorySelect builds the first select menu of the requisition flow.
func categorySelect() []discordgo.MessageComponent {
	names := make([]string, 0, len(config.Cfg.Warehouse.Categories))
	for name := range config.Cfg.Warehouse.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	options := make([]discordgo.SelectMenuOption, 0, len(names))
	for _, name := range names {
		options = append(options, discordgo.SelectMenuOption{
			Label: name,
			Value: name,
		})
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    "wh_cat",
					Placeholder: "选择物资类别",
					Options:     options,
				},
			},
		},
	}
}

// OpenButtonHandler starts the requisition flow with a category menu.
func OpenButtonHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if len(config.Cfg.Warehouse.Categories) == 0 {
		replyEphemeral(s, i, "仓库尚未配置任何物资类别。")
		return
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    "请选择物资类别：",
			Components: categorySelect(),
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error sending category select: %v", err)
	}
}

// CategorySelectHandler shows the item menu for the chosen category.
func CategorySelectHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return
	}
	category := values[0]
	items, ok := config.Cfg.Warehouse.Categories[category]
	if !ok || len(items) == 0 {
		replyEphemeral(s, i, "该类别下没有可申领的物资。")
		return
	}

	options := make([]discordgo.SelectMenuOption, 0, len(items))
	for _, item := range items {
		options = append(options, discordgo.SelectMenuOption{
			Label: item,
			Value: item,
		})
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("类别：**%s**，请选择物资：", category),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.SelectMenu{
							CustomID:    fmt.Sprintf("wh_item:%s", category),
							Placeholder: "选择物资",
							Options:     options,
						},
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("Error sending item select: %v", err)
	}
}

// ItemSelectHandler asks for a quantity via modal.
func ItemSelectHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	parts := strings.SplitN(i.MessageComponentData().CustomID, ":", 2)
	values := i.MessageComponentData().Values
	if len(parts) != 2 || len(values) == 0 {
		return
	}
	category, item := parts[1], values[0]

	cacheID := utils.AddToCache(model.DraftSession{WhCategory: category, WhItem: item})
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: fmt.Sprintf("wh_qty:%s", cacheID),
			Title:    fmt.Sprintf("申领 %s", item),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "wh_quantity",
							Label:       "数量",
							Style:       discordgo.TextInputShort,
							Placeholder: "正整数",
							Required:    true,
							MaxLength:   4,
						},
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("Error creating quantity modal: %v", err)
	}
}

// memberProfile resolves the caller's quantity limits and identity snapshot
// from their personnel record. 未登记人员按默认档位处理。
func memberProfile(userID string) (model.CategoryLimits, warehouse.Holder) {
	person, err := db.GetPersonnel(userID)
	if err != nil {
		log.Printf("Error loading personnel record for %s: %v", userID, err)
	}
	var holder warehouse.Holder
	if person != nil {
		holder = warehouse.Holder{
			Name:     person.Name,
			Static:   person.Static,
			Position: person.Position,
			Rank:     person.Rank,
		}
	}
	return warehouse.Resolve(config.Cfg.Warehouse.Limits, holder.Position, holder.Rank), holder
}

// QuantityModalHandler validates the addition and shows the cart summary.
func QuantityModalHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	parts := strings.SplitN(data.CustomID, ":", 2)
	if len(parts) != 2 {
		return
	}
	session, found := utils.GetFromCache(parts[1])
	if !found {
		replyEphemeral(s, i, "会话已过期，请重新开始申领流程。")
		return
	}
	utils.RemoveFromCache(parts[1])

	var qtyRaw string
	for _, component := range data.Components {
		if actionRow, ok := component.(*discordgo.ActionsRow); ok {
			for _, comp := range actionRow.Components {
				if textInput, ok := comp.(*discordgo.TextInput); ok {
					if textInput.CustomID == "wh_quantity" {
						qtyRaw = textInput.Value
					}
				}
			}
		}
	}
	qty, err := strconv.Atoi(strings.TrimSpace(qtyRaw))
	if err != nil {
		replyEphemeral(s, i, "数量必须是正整数。")
		return
	}

	userID := i.Member.User.ID
	limits, holder := memberProfile(userID)
	existing := Carts.Existing(userID, session.WhCategory, session.WhItem)

	stored, advisory, err := warehouse.Validate(limits, session.WhCategory, session.WhItem, qty, existing)
	if err != nil {
		var verr *warehouse.ValidationError
		if errors.As(err, &verr) {
			replyEphemeral(s, i, "❌ "+verr.Reason)
		} else {
			replyEphemeral(s, i, "校验失败，请稍后重试。")
		}
		return
	}
	Carts.Add(userID, session.WhCategory, session.WhItem, stored, holder)

	content := ""
	if advisory != "" {
		content = "⚠️ " + advisory
	}
	respondCartSummary(s, i, userID, content, false)
}

// cartSummary renders the cart as an embed with numbered lines.
func cartSummary(cart *warehouse.Cart) *discordgo.MessageEmbed {
	if cart == nil || len(cart.Items) == 0 {
		return &discordgo.MessageEmbed{
			Title:       "🛒 申领清单",
			Description: "清单是空的。",
			Color:       0xE67E22,
		}
	}
	var b strings.Builder
	for idx, item := range cart.Items {
		fmt.Fprintf(&b, "%d. 【%s】%s ×%d\n", idx+1, item.Category, item.Name, item.Quantity)
	}
	return &discordgo.MessageEmbed{
		Title:       "🛒 申领清单",
		Description: b.String(),
		Color:       0xE67E22,
	}
}

// cartButtons is the action row under the cart summary.
func cartButtons() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "继续添加",
					Style:    discordgo.SecondaryButton,
					CustomID: "wh_more",
					Emoji:    &discordgo.ComponentEmoji{Name: "➕"},
				},
				discordgo.Button{
					Label:    "提交申请",
					Style:    discordgo.SuccessButton,
					CustomID: "wh_submitcart",
					Emoji:    &discordgo.ComponentEmoji{Name: "✅"},
				},
				discordgo.Button{
					Label:    "移除物品",
					Style:    discordgo.SecondaryButton,
					CustomID: "wh_removebtn",
				},
				discordgo.Button{
					Label:    "清空",
					Style:    discordgo.DangerButton,
					CustomID: "wh_clear",
				},
			},
		},
	}
}

// respondCartSummary shows the current cart, either as a new ephemeral
// message or by updating the one the interaction came from.
func respondCartSummary(s *discordgo.Session, i *discordgo.InteractionCreate, userID, content string, update bool) {
	respType := discordgo.InteractionResponseChannelMessageWithSource
	if update {
		respType = discordgo.InteractionResponseUpdateMessage
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: respType,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Embeds:     []*discordgo.MessageEmbed{cartSummary(Carts.Get(userID))},
			Components: cartButtons(),
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error sending cart summary: %v", err)
	}
}

// MoreButtonHandler goes back to the category menu.
func MoreButtonHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    "请选择物资类别：",
			Embeds:     []*discordgo.MessageEmbed{},
			Components: categorySelect(),
		},
	})
	if err != nil {
		log.Printf("Error sending category select: %v", err)
	}
}

// RemoveButtonHandler opens the remove-by-index modal.
func RemoveButtonHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: "wh_remove_modal",
			Title:    "移除物品",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "wh_remove_index",
							Label:       "要移除的物品序号",
							Style:       discordgo.TextInputShort,
							Placeholder: "清单中的序号, 从 1 开始",
							Required:    true,
							MaxLength:   3,
						},
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("Error creating remove modal: %v", err)
	}
}

// RemoveModalHandler drops one cart line by its 1-based index.
func RemoveModalHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	var idxRaw string
	for _, component := range data.Components {
		if actionRow, ok := component.(*discordgo.ActionsRow); ok {
			for _, comp := range actionRow.Components {
				if textInput, ok := comp.(*discordgo.TextInput); ok {
					if textInput.CustomID == "wh_remove_index" {
						idxRaw = textInput.Value
					}
				}
			}
		}
	}
	index, err := strconv.Atoi(strings.TrimSpace(idxRaw))
	if err != nil {
		replyEphemeral(s, i, "序号必须是数字。")
		return
	}

	userID := i.Member.User.ID
	if err := Carts.Remove(userID, index); err != nil {
		var verr *warehouse.ValidationError
		if errors.As(err, &verr) {
			replyEphemeral(s, i, "❌ "+verr.Reason)
		} else {
			replyEphemeral(s, i, "移除失败，请稍后重试。")
		}
		return
	}
	respondCartSummary(s, i, userID, "", false)
}

// ClearButtonHandler empties the cart.
func ClearButtonHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	Carts.Clear(i.Member.User.ID)
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    "清单已清空。",
			Embeds:     []*discordgo.MessageEmbed{},
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		log.Printf("Error updating clear response: %v", err)
	}
}
