package bot

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"garrison/db"
	"garrison/handler"
	"garrison/handler/application"
	"garrison/handler/supply"
)

func registerEventHandlers(s *discordgo.Session) {
	s.AddHandler(handler.OnInteractionCreate)
	s.AddHandler(onReady)
	s.AddHandler(onGuildMemberRemove)

	// 设置必要的intents
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsGuildMembers
}

// onReady 每次网关就绪后恢复面板与审核控件
func onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("Logged in as %s, starting restore", r.User.Username)
	go func() {
		application.Restore(s)
		supply.RestorePanel(s)
		supply.RestoreControls(s)
		log.Printf("Restore finished")
	}()
}

// onGuildMemberRemove 成员退出服务器时将其人事档案转为退役
func onGuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if err := db.MarkDismissed(m.User.ID); err != nil {
		log.Printf("Failed to mark member %s as dismissed: %v", m.User.ID, err)
	}
}
