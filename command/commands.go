package command

import (
	"garrison/command/def"

	"github.com/bwmarrin/discordgo"
)

// AllCommands contains all of the commands
var AllCommands = []*discordgo.ApplicationCommand{
	def.DeptPanelCommand,
	def.DeptStatusCommand,
	def.WarehousePanelCommand,
}
