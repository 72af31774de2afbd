package telegram

import "gopkg.in/telebot.v3"

// Client defines an interface for pushing messages via a Telegram bot,
// decoupling the ETL services from the concrete bot library.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
}
