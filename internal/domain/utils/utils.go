package utils

import (
	"slices"

	"github.com/spf13/viper"
	tele "gopkg.in/telebot.v3"
)

// AdminIDs returns the Telegram user ids allowed to use the admin bot.
func AdminIDs() []int64 {
	admins := viper.GetIntSlice("bot.admin-ids")
	ids := make([]int64, len(admins))
	for i, v := range admins {
		ids[i] = int64(v)
	}
	return ids
}

func IsAdmin(userID int64) bool {
	return slices.Contains(AdminIDs(), userID)
}

func GetMessageText(msg *tele.Message) string {
	switch {
	case msg.Text != "":
		return msg.Text
	case msg.Caption != "":
		return msg.Caption
	default:
		return ""
	}
}
