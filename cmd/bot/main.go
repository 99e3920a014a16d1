package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/milestonebot/milestone/internal/bot"
	"github.com/milestonebot/milestone/internal/setup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	app, err := setup.InitializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Cleanup()

	discordBot, err := bot.New(&app.Config.Bot, app.Store, app.Settings, app.Logger)
	if err != nil {
		app.Logger.Fatal("Failed to create bot", zap.Error(err))
	}

	if err := discordBot.Start(context.Background()); err != nil {
		app.Logger.Fatal("Failed to start bot", zap.Error(err))
	}

	app.Logger.Info("Bot has been started. Waiting for interrupt signal to gracefully shutdown...")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	discordBot.Close(ctx)
}
