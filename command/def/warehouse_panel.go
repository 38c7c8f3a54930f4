package def

import "github.com/bwmarrin/discordgo"

var WarehousePanelCommand = &discordgo.ApplicationCommand{
	Name:        "warehouse-panel",
	Description: "创建或重建军需仓库面板",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "仓库面板",
	},
}
