// Service bridging command events to the automation hub.
//
// Any command event on the bus (from the voice service, the dashboard
// or a routine) is forwarded as a REST service call to the configured
// Home Assistant instance. State changes are polled back and emitted
// as state events.
package hub

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/oodog/binghome/pubsub"
	"github.com/oodog/binghome/services"
)

const defaultTimeout = 10 * time.Second
const statePollInterval = 30 * time.Second

// reserved command fields that aren't part of the service payload
var metaFields = map[string]bool{
	"device":    true,
	"command":   true,
	"domain":    true,
	"source":    true,
	"timestamp": true,
	"repeat":    true,
}

// Service hub
type Service struct {
	client *Client
}

// ID of the service
func (self *Service) ID() string {
	return "hub"
}

func (self *Service) Init() error {
	conf := services.Config().Hub
	if conf.Url == "" {
		return fmt.Errorf("hub url not configured")
	}
	self.client = NewClient(conf.Url, conf.Token, conf.Timeout.Or(defaultTimeout))
	return nil
}

// command translates a command event into a hub service call.
func (self *Service) command(ev *pubsub.Event) {
	entity := ev.Device()
	command := ev.Command()
	if entity == "" || command == "" {
		return
	}

	domain := ev.StringField("domain")
	if domain == "" {
		domain = strings.SplitN(entity, ".", 2)[0]
	}

	payload := map[string]interface{}{"entity_id": entity}
	for key, value := range ev.Fields {
		if !metaFields[key] {
			payload[key] = value
		}
	}

	err := self.client.CallService(domain, command, payload)
	if err != nil {
		log.Printf("Command %s %s failed: %s", entity, command, err)
		fields := pubsub.Fields{
			"source":  "hub",
			"message": fmt.Sprintf("Couldn't reach the hub for %s", entity),
		}
		services.Publisher.Emit(pubsub.NewEvent("alert", fields))
		return
	}
	log.Printf("Called %s.%s for %s", domain, command, entity)
}

// pollStates emits the hub's entity states as retained state events.
func (self *Service) pollStates() {
	for range time.Tick(statePollInterval) {
		states, err := self.client.States()
		if err != nil {
			log.Println("Error fetching states:", err)
			continue
		}
		for _, state := range states {
			if _, ok := services.Config().Devices[state.EntityId]; !ok {
				continue
			}
			fields := pubsub.Fields{
				"device": state.EntityId,
				"state":  state.State,
				"source": "hub",
			}
			ev := pubsub.NewEvent("state", fields)
			ev.SetRetained(true)
			services.Publisher.Emit(ev)
		}
	}
}

func (self *Service) queryStatus(q services.Question) string {
	states, err := self.client.States()
	if err != nil {
		return fmt.Sprintf("Hub unreachable: %s", err)
	}
	var lines []string
	for _, state := range states {
		if _, ok := services.Config().Devices[state.EntityId]; ok {
			lines = append(lines, fmt.Sprintf("%s: %s", state.EntityId, state.State))
		}
	}
	sort.Strings(lines)
	if len(lines) == 0 {
		return "No known devices reported by the hub"
	}
	return strings.Join(lines, "\n")
}

func (self *Service) queryState(q services.Question) services.Answer {
	entity := strings.TrimSpace(q.Args)
	if entity == "" {
		return services.Answer{Text: "Usage: state <entity_id>"}
	}
	state, err := self.client.GetState(entity)
	if err != nil {
		return services.Answer{Text: fmt.Sprintf("Hub unreachable: %s", err)}
	}
	if state == nil {
		return services.Answer{Text: fmt.Sprintf("Unknown entity: %s", entity)}
	}
	return services.Answer{
		Text: fmt.Sprintf("%s: %s", state.EntityId, state.State),
		Json: state,
	}
}

func (self *Service) QueryHandlers() services.QueryHandlers {
	return services.QueryHandlers{
		"status": services.TextHandler(self.queryStatus),
		"state":  self.queryState,
		"help": services.StaticHandler("" +
			"status: device states from the hub\n" +
			"state entity: one entity's state\n"),
	}
}

// Run the service
func (self *Service) Run() error {
	go self.pollStates()
	for ev := range services.Subscriber.Subscribe(pubsub.Prefix("command")) {
		self.command(ev)
	}
	return nil
}
