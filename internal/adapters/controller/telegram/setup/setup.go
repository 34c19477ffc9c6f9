package setup

import (
	"context"

	"github.com/fasevent/registrations/cmd/app"
	"github.com/fasevent/registrations/internal/adapters/controller/telegram/handlers/admin"
	"github.com/fasevent/registrations/internal/adapters/controller/telegram/handlers/middlewares"
	"github.com/fasevent/registrations/internal/adapters/controller/telegram/scheduler"
	"github.com/fasevent/registrations/pkg/logger"
	"github.com/spf13/viper"
	"gopkg.in/telebot.v3/middleware"
)

func Setup(a *app.App) {
	botLogger, err := logger.Named("bot")
	if err != nil {
		logger.Log.Panicf("Failed to create bot logger: %v", err)
	}

	// Pre-setup and global middlewares
	middle := middlewares.New(botLogger)
	adminHandler := admin.New(a, botLogger)

	if viper.GetBool("settings.debug") {
		a.Bot.Use(middleware.Logger())
	}
	a.Bot.Use(middleware.AutoRespond())

	if err = a.Bot.SetCommands(admin.Commands); err != nil {
		botLogger.Errorf("failed to set bot commands: %v", err)
	}

	//Admin:
	a.Bot.Use(middle.AdminOnly)
	adminHandler.AdminSetup(a.Bot.Group())

	if chatID := viper.GetInt64("bot.alerts-chat-id"); chatID != 0 {
		scheduler.NewPendingScheduler(
			botLogger,
			a.Services.Registration,
			a.Bot,
			chatID,
			viper.GetDuration("bot.pending-digest-interval"),
		).Start(context.Background())
	}
}
