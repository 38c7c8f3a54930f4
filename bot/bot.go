package bot

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"

	"garrison/command"
	"garrison/config"
	"garrison/handler/application"
	"garrison/handler/supply"
)

var dg *discordgo.Session

// Start 启动机器人
func Start() {
	// 注册各模块处理程序
	application.RegisterHandlers()
	supply.RegisterHandlers()

	// 使用提供的机器人令牌创建一个新的 Discord 会话
	var err error
	dg, err = discordgo.New("Bot " + config.Cfg.Token)
	if err != nil {
		log.Printf("创建 Discord 会话时出错, %v", err)
		return
	}

	registerEventHandlers(dg)

	err = dg.Open()
	if err != nil {
		log.Printf("error opening connection, %v", err)
		return
	}

	for _, guildID := range config.Cfg.Commands.AllowGuilds {
		for _, cmd := range command.AllCommands {
			_, err := dg.ApplicationCommandCreate(dg.State.User.ID, guildID, cmd)
			if err != nil {
				log.Fatalf("Cannot create '%v' command: %v", cmd.Name, err)
			}
		}
	}

	startCron()

	log.Printf("Bot is now running. Press CTRL-C to exit.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	stopCron()
	dg.Close()
}
