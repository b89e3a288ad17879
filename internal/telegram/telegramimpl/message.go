package telegramimpl

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SendMessage sends a text message to an arbitrary chat.
func (tg *TelegramImpl) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := tg.TgBot.Send(msg); err != nil {
		tg.Logger.Error("Error sending message", "chatID", chatID, "error", err)
		return err
	}
	return nil
}

// SendMessageToUser sends a text message to the configured operator user.
// Delivery failures are logged, never propagated: run reporting is
// best-effort and must not affect the pipeline.
func (tg *TelegramImpl) SendMessageToUser(message string) {
	if err := tg.SendMessage(tg.Config.Telegram.User, message); err != nil {
		return
	}

	tg.Logger.Info("Message sent to user",
		"userID", tg.Config.Telegram.User)
}

// SendMessageToChannel sends a text message to the configured channel.
func (tg *TelegramImpl) SendMessageToChannel(msg string) {
	channelName := "@" + tg.Config.Telegram.Channel
	newMsg := tgbotapi.NewMessageToChannel(channelName, msg)

	_, err := tg.TgBot.Send(newMsg)
	if err != nil {
		tg.Logger.Error("Error sending message to channel",
			"channel", channelName,
			"error", err)
		return
	}

	tg.Logger.Info("Message sent to channel",
		"channel", channelName)
}
