package main

import (
	"log"

	"garrison/bot"
	"garrison/config"
	"garrison/db"
)

func main() {
	err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if config.Cfg.Token == "" {
		log.Fatalf("Token is empty, check config.yaml")
	}

	db.InitDB()

	bot.Start()
}
