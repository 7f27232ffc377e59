// Service resolving voice commands into device actions.
//
// Utterances arrive as 'voice/ask' queries (from the dashboard API or
// a chat relay) or as events on the 'voice' topic. Resolved actions
// are emitted as command events, picked up by the hub service; the
// outcome is published as a voice_response event for the dashboard.
package voice

import (
	"context"
	"time"

	"github.com/oodog/binghome/pubsub"
	"github.com/oodog/binghome/services"
)

const resolveTimeout = 15 * time.Second

// Service voice
type Service struct {
	resolver *Resolver
}

// ID of the service
func (self *Service) ID() string {
	return "voice"
}

func (self *Service) Init() error {
	var llm Completer
	if key := services.Config().Assistant.ApiKey; key != "" {
		llm = NewOpenAI(key, services.Config().Assistant.Model)
	}
	self.resolver = NewResolver(services.Stor, services.Config().Assistant.Default, llm)
	return nil
}

// Ask resolves one utterance and emits any resulting events.
func (self *Service) Ask(utterance string) Result {
	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	result := self.resolver.Resolve(ctx, utterance)
	if result.Action != nil {
		services.Publisher.Emit(result.Action.Event())
	}

	fields := pubsub.Fields{
		"source":  "voice",
		"query":   utterance,
		"message": result.Message,
		"success": result.OK,
	}
	services.Publisher.Emit(pubsub.NewEvent("voice_response", fields))
	return result
}

func (self *Service) queryAsk(q services.Question) string {
	return self.Ask(q.Args).Message
}

func (self *Service) queryAliases(q services.Question) string {
	return self.resolver.AliasList()
}

func (self *Service) QueryHandlers() services.QueryHandlers {
	return services.QueryHandlers{
		"ask":     services.TextHandler(self.queryAsk),
		"aliases": services.TextHandler(self.queryAliases),
		"help": services.StaticHandler("" +
			"ask text: resolve a voice command\n" +
			"aliases: list taught aliases\n"),
	}
}

// Run the service
func (self *Service) Run() error {
	for ev := range services.Subscriber.Subscribe(pubsub.Exact("voice")) {
		if query := ev.StringField("query"); query != "" {
			self.Ask(query)
		}
	}
	return nil
}
