package application

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"garrison/db"
	"garrison/model"
	"garrison/utils"
)

// conflictPromptTTL is how long a moderator has to resolve an identity
// conflict prompt before it expires. 过期后不做任何默认动作。
const conflictPromptTTL = 5 * time.Minute

// conflictRejectReason is the canonical reason used when the moderator keeps
// the existing claim.
const conflictRejectReason = "编号已被其他在役人员占用，请核实后使用本人编号重新申请。"

// findStaticConflict checks whether the application's static number is
// already claimed by a different member. 退役档案同样算冲突, 由审核人决定去留。
func findStaticConflict(app *model.Application) (bool, *model.Personnel) {
	owner, err := db.LookupByStatic(app.Static)
	if err != nil {
		log.Printf("Error looking up static %s: %v", app.Static, err)
		return false, nil
	}
	if owner == nil || owner.DiscordID == app.RequesterID {
		return false, nil
	}
	return true, owner
}

// promptStaticConflict shows the moderator a replace-or-reject choice on the
// deferred interaction.
func promptStaticConflict(s *discordgo.Session, i *discordgo.InteractionCreate, app *model.Application, owner *model.Personnel) {
	cacheID := utils.AddToCache(model.DraftSession{App: *app})

	standing := "在役"
	if owner.IsDismissed {
		standing = "已退役"
	}
	content := fmt.Sprintf(
		"⚠️ **编号冲突**\n\n编号 `%s` 已登记在 <@%s> (%s) 名下，状态：%s，登记于 <t:%d:D>。\n\n"+
			"• **顶替登记**：旧档案转为退役，编号转移给新申请人\n"+
			"• **拒绝申请**：保留现有登记，按编号冲突拒绝\n\n"+
			"此提示 5 分钟后失效。",
		app.Static, owner.DiscordID, owner.Name, standing, owner.JoinedAt.Unix())

	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: utils.StringPtr(content),
		Components: &[]discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "顶替登记",
						Style:    discordgo.DangerButton,
						CustomID: fmt.Sprintf("conflict_replace:%s", cacheID),
					},
					discordgo.Button{
						Label:    "拒绝申请",
						Style:    discordgo.SecondaryButton,
						CustomID: fmt.Sprintf("conflict_reject:%s", cacheID),
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("Error sending conflict prompt: %v", err)
	}
}

// conflictSession loads and validates the conflict prompt session.
func conflictSession(s *discordgo.Session, i *discordgo.InteractionCreate) (model.DraftSession, string, bool) {
	parts := strings.SplitN(i.MessageComponentData().CustomID, ":", 2)
	if len(parts) != 2 {
		return model.DraftSession{}, "", false
	}
	session, found := utils.GetFromCache(parts[1])
	if !found || time.Since(session.CreatedAt) > conflictPromptTTL {
		utils.RemoveFromCache(parts[1])
		replyEphemeral(s, i, "该冲突提示已失效，请重新点击通过按钮。")
		return model.DraftSession{}, "", false
	}
	return session, parts[1], true
}

// ConflictReplaceHandler transfers the static number and resumes the
// approval pipeline on the original application message.
func ConflictReplaceHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	actorID := i.Member.User.ID
	if !utils.IsAdmin(actorID, i.Member.Roles) && !utils.IsModerator(actorID, i.Member.Roles) {
		replyEphemeral(s, i, "你没有权限处理编号冲突。")
		return
	}
	session, cacheID, ok := conflictSession(s, i)
	if !ok {
		return
	}

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
				log.Printf("Panic in conflict replace goroutine: %v", r)
			}
		}()

		app := session.App
		if err := db.RebindStatic(app.Static, app.RequesterID); err != nil {
			log.Printf("Error rebinding static %s: %v", app.Static, err)
			s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
				Content: utils.StringPtr("编号转移失败，申请未处理。"),
			})
			return
		}
		utils.RemoveFromCache(cacheID)
		finalizeApproval(s, i.Interaction, i.GuildID, actorID, &app)
	}()
}

// ConflictRejectHandler keeps the existing claim and opens the reject modal
// pre-filled with the canonical conflict reason.
func ConflictRejectHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	actorID := i.Member.User.ID
	if !utils.IsAdmin(actorID, i.Member.Roles) && !utils.IsModerator(actorID, i.Member.Roles) {
		replyEphemeral(s, i, "你没有权限处理编号冲突。")
		return
	}
	session, cacheID, ok := conflictSession(s, i)
	if !ok {
		return
	}
	utils.RemoveFromCache(cacheID)
	openRejectModal(s, i, session.App.ChannelID, session.App.MessageID, conflictRejectReason)
}
