package def

import "github.com/bwmarrin/discordgo"

var DeptPanelCommand = &discordgo.ApplicationCommand{
	Name:        "dept-panel",
	Description: "创建或重建部门招募面板",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "部门面板",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "department",
			Description: "部门代码 (配置文件中的 key)",
			NameLocalizations: map[discordgo.Locale]string{
				discordgo.ChineseCN: "部门",
			},
			Required: true,
		},
	},
}
