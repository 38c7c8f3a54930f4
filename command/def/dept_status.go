package def

import "github.com/bwmarrin/discordgo"

var DeptStatusCommand = &discordgo.ApplicationCommand{
	Name:        "dept-status",
	Description: "查看自己的申请与人事档案状态",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "我的状态",
	},
}
