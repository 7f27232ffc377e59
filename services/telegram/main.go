// Service relaying alerts to a telegram chat, and accepting queries
// back. "/voice_ask turn on the light" in the chat runs a voice
// command; a gas alert pops up as a telegram message.
package telegram

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/oodog/binghome/pubsub"
	"github.com/oodog/binghome/services"
)

// Service telegram
type Service struct {
	bot *tgbotapi.BotAPI
}

// ID of the service
func (self *Service) ID() string {
	return "telegram"
}

func (self *Service) sendMessage(ev *pubsub.Event, remote int) {
	message := ev.StringField("message")
	if message == "" {
		return
	}
	log.Printf("Sending telegram message: %s", message)
	msg := tgbotapi.NewMessage(services.Config().Telegram.ChatId, message)
	if remote != 0 {
		msg.ReplyToMessageID = remote
	}
	self.bot.Send(msg)
}

// rewriteCommands maps "/voice_ask ..." to "voice/ask ..."
func rewriteCommands(s string) string {
	s = strings.TrimLeft(s, "/")
	i := strings.Index(s, " ")
	if i == -1 {
		i = len(s)
	}
	return strings.Replace(s[:i], "_", "/", -1) + s[i:]
}

func (self *Service) listen() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := self.bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		if services.Config().Telegram.ChatId == update.Message.Chat.ID {
			remote := fmt.Sprint(update.Message.MessageID)
			text := rewriteCommands(update.Message.Text)
			services.SendQuery(text, "telegram", remote, "alert")
		} else {
			text := fmt.Sprintf("This is chat %d, configure this under telegram chat_id.", update.Message.Chat.ID)
			msg := tgbotapi.NewMessage(update.Message.Chat.ID, text)
			self.bot.Send(msg)
		}
	}
}

// Run the service
func (self *Service) Run() error {
	bot, err := tgbotapi.NewBotAPI(services.Config().Telegram.Token)
	if err != nil {
		return err
	}
	self.bot = bot

	go self.listen()

	for ev := range services.Subscriber.Subscribe(pubsub.Prefix("alert")) {
		// untargeted alerts go to the chat too
		if ev.Target() == "telegram" || ev.Target() == "" {
			remote, _ := strconv.Atoi(ev.StringField("remote"))
			self.sendMessage(ev, remote)
		}
	}
	return nil
}
