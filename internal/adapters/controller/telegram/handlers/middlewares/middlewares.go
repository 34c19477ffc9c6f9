package middlewares

import (
	"github.com/fasevent/registrations/internal/domain/utils"
	"github.com/fasevent/registrations/pkg/logger/types"
	tele "gopkg.in/telebot.v3"
)

type Handler struct {
	logger *types.Logger
}

func New(logger *types.Logger) *Handler {
	return &Handler{
		logger: logger,
	}
}

// AdminOnly lets through users listed in bot.admin-ids and answers everyone else.
func (h Handler) AdminOnly(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Sender() == nil {
			return nil
		}
		if !utils.IsAdmin(c.Sender().ID) {
			h.logger.Warnf("(user: %d) access denied: %s", c.Sender().ID, c.Text())
			if c.Chat() != nil && c.Chat().Type == tele.ChatPrivate {
				return c.Send("⛔️ This bot is for event staff only.")
			}
			return nil
		}
		return next(c)
	}
}
