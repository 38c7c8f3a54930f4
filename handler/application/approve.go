package application

import (
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"garrison/codec"
	"garrison/config"
	"garrison/db"
	"garrison/model"
	"garrison/utils"
)

// approvalSession 覆盖审批流水线用到的会话操作, *discordgo.Session 满足它。
type approvalSession interface {
	utils.DMSender
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberNickname(guildID, userID, nickname string, options ...discordgo.RequestOption) error
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// finalizeApproval runs the full approval pipeline and reports the result on
// the deferred interaction. Discord的每一步都可能失败, 任何一步失败只记录警告并
// 继续, 保证申请消息最终一定进入已通过状态。
func finalizeApproval(s approvalSession, interaction *discordgo.Interaction, guildID, actorID string, app *model.Application) {
	code, dept, ok := deptCodeByName(app.Department)
	if !ok {
		s.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{
			Content: utils.StringPtr("该部门未配置，无法完成审批。"),
		})
		return
	}

	var warnings []string
	warn := func(step string, err error) {
		log.Printf("Approval step %s failed for user %s: %v", step, app.RequesterID, err)
		warnings = append(warnings, step)
	}

	// 1. 先移除旧的部门与职务身份组, 转调不会叠加身份
	for _, roleID := range config.AllDepartmentRoleIDs() {
		if roleID == dept.RoleID {
			continue
		}
		if err := s.GuildMemberRoleRemove(guildID, app.RequesterID, roleID); err != nil {
			warn("移除旧部门身份组", err)
		}
	}
	for _, roleID := range config.AllPositionRoleIDs() {
		if err := s.GuildMemberRoleRemove(guildID, app.RequesterID, roleID); err != nil {
			warn("移除旧职务身份组", err)
		}
	}

	// 2. 授予新部门身份组
	if dept.RoleID != "" {
		if err := s.GuildMemberRoleAdd(guildID, app.RequesterID, dept.RoleID); err != nil {
			warn("授予部门身份组", err)
		}
	}
	for _, roleID := range dept.PositionRoleIDs {
		if err := s.GuildMemberRoleAdd(guildID, app.RequesterID, roleID); err != nil {
			warn("授予职务身份组", err)
		}
	}

	// 3. 改昵称为 缩写 | 姓名, Discord上限32字符
	if err := s.GuildMemberNickname(guildID, app.RequesterID, deptNickname(dept.Abbreviation, app.Name)); err != nil {
		warn("修改昵称", err)
	}

	// 4. 登记人事档案
	if err := db.UpsertPersonnel(&model.Personnel{
		DiscordID:  app.RequesterID,
		Name:       app.Name,
		Static:     app.Static,
		Department: app.Department,
	}); err != nil {
		warn("登记人事档案", err)
	}

	// 5. 私信通知
	utils.SendDM(s, app.RequesterID, &discordgo.MessageEmbed{
		Title:       "✅ 申请已通过",
		Description: fmt.Sprintf("恭喜！你在 **%s** 的申请已通过审核。", app.Department),
		Color:       codec.ColorApproved,
	})

	// 6. 最后更新申请消息为终态
	app.Status = model.StatusApproved
	app.DecidedBy = actorID
	app.DecidedAt = time.Now().UTC()
	terminal := terminalControls(model.StatusApproved, code, app.RequesterID)
	_, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    app.ChannelID,
		ID:         app.MessageID,
		Embeds:     &[]*discordgo.MessageEmbed{codec.Encode(app)},
		Components: &terminal,
	})
	if err != nil {
		warn("更新申请消息", err)
	}

	result := "✅ 已通过该申请。"
	if len(warnings) > 0 {
		result = fmt.Sprintf("✅ 已通过该申请，但以下步骤失败：%v。请手动检查。", warnings)
	}
	s.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{
		Content: utils.StringPtr(result),
	})
}

// deptNickname renders "缩写 | 姓名" within Discord's 32 character limit.
func deptNickname(abbr, name string) string {
	nickname := name
	if abbr != "" {
		nickname = fmt.Sprintf("%s | %s", abbr, name)
	}
	runes := []rune(nickname)
	if len(runes) > 32 {
		nickname = string(runes[:32])
	}
	return nickname
}
