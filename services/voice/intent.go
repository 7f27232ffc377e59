package voice

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/oodog/binghome/pubsub"
	"github.com/oodog/binghome/services"
)

// Action is a device action for the automation hub: a domain/service
// pair plus call payload ({"light", "turn_on", {"entity_id": ...}}).
type Action struct {
	Domain  string                 `json:"domain"`
	Service string                 `json:"service"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// Event translates the action to a command event for the bus.
func (a *Action) Event() *pubsub.Event {
	entity, _ := a.Payload["entity_id"].(string)
	ev := pubsub.NewCommand(entity, a.Service)
	ev.SetField("domain", a.Domain)
	ev.SetField("source", "voice")
	for k, v := range a.Payload {
		if k != "entity_id" {
			ev.SetField(k, v)
		}
	}
	return ev
}

// Result of resolving one utterance.
type Result struct {
	OK      bool
	Message string
	Action  *Action
}

const aliasPrefix = "binghome/aliases/"

// Resolver turns free text into device actions. Aliases taught by the
// user ("remember that X is Y") are persisted in the store.
type Resolver struct {
	store    services.Store
	defaults map[string]string // domain -> fallback entity
	llm      Completer
}

func NewResolver(store services.Store, defaults map[string]string, llm Completer) *Resolver {
	return &Resolver{store: store, defaults: defaults, llm: llm}
}

var (
	reRemember = regexp.MustCompile(`^remember (?:that )?(.+?) is ((?:[a-z_]+)\.(?:[a-z0-9_]+))$`)
	reForget   = regexp.MustCompile(`^forget (?:about )?(.+)$`)
	reNumber   = regexp.MustCompile(`\b(\d{2})\b`)
)

// words mapping to a device domain in on/off commands
var deviceWords = []struct {
	word   string
	domain string
}{
	{"light", "light"},
	{"lamp", "light"},
	{"fan", "fan"},
	{"switch", "switch"},
	{"plug", "switch"},
	{"heater", "switch"},
}

// Resolve runs the resolution steps in order, first match wins:
// alias teaching, keyword rules, LLM fallback, canned failure. It
// never returns an error - failures become user-facing messages.
func (r *Resolver) Resolve(ctx context.Context, utterance string) Result {
	text := strings.ToLower(strings.TrimSpace(utterance))
	if text == "" {
		return Result{Message: "Say something like 'turn on the light'."}
	}

	if result, ok := r.teach(text); ok {
		return result
	}
	if result, ok := r.keywordRules(text); ok {
		return result
	}
	if r.llm != nil {
		return r.llmFallback(ctx, text)
	}
	return Result{Message: fmt.Sprintf("Sorry, I didn't understand: %q", utterance)}
}

// teach handles "remember that X is Y" / "forget X". Re-teaching an
// alias overwrites it silently.
func (r *Resolver) teach(text string) (Result, bool) {
	if m := reRemember.FindStringSubmatch(text); m != nil {
		alias, entity := strings.TrimSpace(m[1]), m[2]
		if err := r.store.Set(aliasPrefix+alias, entity); err != nil {
			return Result{Message: "I couldn't save that: " + err.Error()}, true
		}
		return Result{OK: true, Message: fmt.Sprintf("Okay, %q is %s", alias, entity)}, true
	}
	if m := reForget.FindStringSubmatch(text); m != nil {
		alias := strings.TrimSpace(m[1])
		if _, err := r.store.Get(aliasPrefix + alias); err != nil {
			return Result{Message: fmt.Sprintf("I don't know %q", alias)}, true
		}
		r.store.Delete(aliasPrefix + alias)
		return Result{OK: true, Message: fmt.Sprintf("Okay, forgotten %q", alias)}, true
	}
	return Result{}, false
}

func (r *Resolver) keywordRules(text string) (Result, bool) {
	if strings.Contains(text, "temperature") || strings.Contains(text, "thermostat") {
		if strings.Contains(text, "set ") {
			if m := reNumber.FindStringSubmatch(text); m != nil {
				degrees, _ := strconv.Atoi(m[1])
				entity := r.resolveEntity(text, "climate")
				action := &Action{
					Domain:  "climate",
					Service: "set_temperature",
					Payload: map[string]interface{}{
						"entity_id":   entity,
						"temperature": degrees,
					},
				}
				msg := fmt.Sprintf("Setting temperature to %d degrees", degrees)
				return Result{OK: true, Message: msg, Action: action}, true
			}
		}
	}

	var service, verb string
	switch {
	case strings.Contains(text, "turn on") || strings.Contains(text, "switch on"):
		service, verb = "turn_on", "on"
	case strings.Contains(text, "turn off") || strings.Contains(text, "switch off"):
		service, verb = "turn_off", "off"
	default:
		return Result{}, false
	}

	domain := ""
	for _, dw := range deviceWords {
		if strings.Contains(text, dw.word) {
			domain = dw.domain
			break
		}
	}
	if domain == "" {
		return Result{}, false
	}

	entity := r.resolveEntity(text, domain)
	// an aliased entity carries its own domain
	if i := strings.Index(entity, "."); i > 0 {
		domain = entity[:i]
	}
	action := &Action{
		Domain:  domain,
		Service: service,
		Payload: map[string]interface{}{"entity_id": entity},
	}
	msg := fmt.Sprintf("Turning %s the %s", verb, entityName(entity))
	return Result{OK: true, Message: msg, Action: action}, true
}

func entityName(entity string) string {
	ps := strings.SplitN(entity, ".", 2)
	return strings.Replace(ps[len(ps)-1], "_", " ", -1)
}

// resolveEntity finds the entity an utterance refers to: the longest
// taught alias appearing in the text wins, otherwise the configured
// default for the domain, otherwise <domain>.living_room.
func (r *Resolver) resolveEntity(text string, domain string) string {
	best := ""
	entity := ""
	for alias, aliased := range r.Aliases() {
		if strings.Contains(text, alias) && len(alias) > len(best) {
			best = alias
			entity = aliased
		}
	}
	if entity != "" {
		return entity
	}
	if entity, ok := r.defaults[domain]; ok {
		return entity
	}
	return domain + ".living_room"
}

// Aliases returns all taught aliases.
func (r *Resolver) Aliases() map[string]string {
	ret := map[string]string{}
	nodes, err := r.store.GetRecursive(strings.TrimSuffix(aliasPrefix, "/"))
	if err != nil {
		return ret
	}
	for _, node := range nodes {
		alias := node.Key[strings.LastIndex(node.Key, "/")+1:]
		ret[alias] = node.Value
	}
	return ret
}

// AliasList renders aliases for display, sorted.
func (r *Resolver) AliasList() string {
	aliases := r.Aliases()
	if len(aliases) == 0 {
		return "No aliases taught yet. Say 'remember that <name> is <entity>'."
	}
	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&out, "%s: %s\n", k, aliases[k])
	}
	return out.String()
}
