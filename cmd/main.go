package main

import (
	"log"

	"github.com/fasevent/registrations/cmd/app"
	"github.com/fasevent/registrations/internal/adapters/config"
	setupHTTP "github.com/fasevent/registrations/internal/adapters/controller/http/setup"
	setupBot "github.com/fasevent/registrations/internal/adapters/controller/telegram/setup"

	_ "time/tzdata"
)

func main() {
	cfg := config.Get()
	a, err := app.New(cfg)
	if err != nil {
		log.Panic(err)
	}

	setupHTTP.Setup(a)
	if a.Bot != nil {
		setupBot.Setup(a)
	}

	a.Start()
}
