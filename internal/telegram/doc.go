// Package telegram sends bot notifications through the Telegram Bot API.
//
// [Client] wraps github.com/go-telegram-bot-api/telegram-bot-api/v5 and
// satisfies the homeworkbot.ChatTransport interface.
package telegram
