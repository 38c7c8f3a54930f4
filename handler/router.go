package handler

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"garrison/codec"
)

var (
	commandHandlers   = make(map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate))
	componentHandlers = make(map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate))
	modalHandlers     = make(map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate))
	controlHandlers   = make(map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate, id codec.ControlID))
)

// AddCommandHandler registers a handler for a slash command.
func AddCommandHandler(name string, handler func(s *discordgo.Session, i *discordgo.InteractionCreate)) {
	commandHandlers[name] = handler
}

// AddComponentHandler registers a handler for a message component by its
// custom ID prefix (the part before the first ":").
func AddComponentHandler(customID string, handler func(s *discordgo.Session, i *discordgo.InteractionCreate)) {
	componentHandlers[customID] = handler
}

// AddModalHandler registers a handler for a modal submission by its custom ID
// prefix (the part before the first ":").
func AddModalHandler(customID string, handler func(s *discordgo.Session, i *discordgo.InteractionCreate)) {
	modalHandlers[customID] = handler
}

// AddControlHandler registers a handler for one moderation action. Control
// IDs carry {context}_{action}_{requesterId} and survive restarts, so they
// are routed by the action parsed out of the ID instead of a registered
// prefix.
func AddControlHandler(action string, handler func(s *discordgo.Session, i *discordgo.InteractionCreate, id codec.ControlID)) {
	controlHandlers[action] = handler
}

// OnInteractionCreate is the main interaction router.
// It should be registered as the primary interaction handler in bot.go.
func OnInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if handler, ok := commandHandlers[i.ApplicationCommandData().Name]; ok {
			handler(s, i)
		}
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		handlerKey := strings.SplitN(customID, ":", 2)[0]

		if handler, ok := componentHandlers[handlerKey]; ok {
			handler(s, i)
			return
		}
		// 不是注册过的前缀, 再按持久化控件ID解析
		if id, err := codec.ParseControlID(customID); err == nil {
			if handler, ok := controlHandlers[id.Action]; ok {
				handler(s, i, id)
			}
		}
	case discordgo.InteractionModalSubmit:
		customID := i.ModalSubmitData().CustomID
		handlerKey := strings.SplitN(customID, ":", 2)[0]

		if handler, ok := modalHandlers[handlerKey]; ok {
			handler(s, i)
		}
	}
}
