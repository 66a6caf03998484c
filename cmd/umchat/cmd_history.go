package main

import (
	"fmt"
	"os"

	"umchat/pkg/dialog"
	"umchat/pkg/skill"
	"umchat/pkg/storage"
)

func historyCmd() {
	args := os.Args[2:]
	action := "show"
	if len(args) > 0 {
		action = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	switch action {
	case "show":
		session, err := newSession(cfg)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		entries := session.Entries()
		if len(entries) == 0 {
			fmt.Println("History is empty.")
			return
		}
		for _, entry := range entries {
			who := "you"
			if entry.IsBot {
				who = "bot"
			}
			marker := ""
			if entry.CardType != skill.CardTypeText {
				marker = fmt.Sprintf(" [%s]", entry.CardType)
			}
			fmt.Printf("%4d %s %s%s %s\n", entry.MessageID, dialog.FormatDate(entry.Date), who, marker, entry.Text)
		}
	case "clear":
		session, err := newSession(cfg)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		session.Clear()
		fmt.Println("History cleared.")
	case "reset-id":
		if err := storage.ClearUserID(cfg.History.Dir); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		session, err := newSession(cfg)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		session.Clear()
		fmt.Println("User id regenerated, history and state cleared.")
	default:
		fmt.Printf("Unknown history command: %s\n", action)
		fmt.Println("Usage: umchat history [show|clear|reset-id]")
		os.Exit(1)
	}
}
