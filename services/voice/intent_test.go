package voice

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oodog/binghome/services"
)

// fakeCompleter returns a canned completion, or an error.
type fakeCompleter struct {
	content string
	err     error
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	return f.content, f.err
}

func newTestResolver(llm Completer) *Resolver {
	return NewResolver(services.NewMockStore(), nil, llm)
}

func ExampleResolver_Resolve() {
	r := newTestResolver(nil)
	result := r.Resolve(context.Background(), "turn on the fan")
	fmt.Println(result.Message)
	fmt.Println(result.Action.Domain, result.Action.Service, result.Action.Payload["entity_id"])
	// Output:
	// Turning on the living room
	// fan turn_on fan.living_room
}

func TestTurnOnFan(t *testing.T) {
	r := newTestResolver(nil)
	result := r.Resolve(context.Background(), "Turn on the fan")
	assert.True(t, result.OK)
	if assert.NotNil(t, result.Action) {
		assert.Equal(t, "fan", result.Action.Domain)
		assert.Equal(t, "turn_on", result.Action.Service)
		assert.Equal(t, "fan.living_room", result.Action.Payload["entity_id"])
	}
}

func TestTurnOffSwitchWording(t *testing.T) {
	r := newTestResolver(nil)
	result := r.Resolve(context.Background(), "switch off the heater")
	assert.True(t, result.OK)
	assert.Equal(t, "turn_off", result.Action.Service)
	assert.Equal(t, "switch", result.Action.Domain)
}

func TestTeachThenUseAlias(t *testing.T) {
	r := newTestResolver(nil)

	result := r.Resolve(context.Background(), "remember that bedroom light is light.bedroom_1")
	assert.True(t, result.OK)
	assert.Nil(t, result.Action)

	result = r.Resolve(context.Background(), "turn off bedroom light")
	assert.True(t, result.OK)
	if assert.NotNil(t, result.Action) {
		assert.Equal(t, "light", result.Action.Domain)
		assert.Equal(t, "turn_off", result.Action.Service)
		assert.Equal(t, "light.bedroom_1", result.Action.Payload["entity_id"])
	}
}

func TestLongestAliasWins(t *testing.T) {
	r := newTestResolver(nil)
	r.Resolve(context.Background(), "remember that light is light.hall")
	r.Resolve(context.Background(), "remember that kitchen light is light.kitchen_main")

	result := r.Resolve(context.Background(), "turn on the kitchen light")
	assert.Equal(t, "light.kitchen_main", result.Action.Payload["entity_id"])
}

func TestForgetAlias(t *testing.T) {
	r := newTestResolver(nil)
	r.Resolve(context.Background(), "remember that desk lamp is light.desk")

	result := r.Resolve(context.Background(), "forget desk lamp")
	assert.True(t, result.OK)
	assert.NotContains(t, r.Aliases(), "desk lamp")

	result = r.Resolve(context.Background(), "forget desk lamp")
	assert.False(t, result.OK)
	assert.Equal(t, `I don't know "desk lamp"`, result.Message)
}

func TestSetTemperature(t *testing.T) {
	r := newTestResolver(nil)
	result := r.Resolve(context.Background(), "set the temperature to 22 degrees")
	assert.True(t, result.OK)
	if assert.NotNil(t, result.Action) {
		assert.Equal(t, "climate", result.Action.Domain)
		assert.Equal(t, "set_temperature", result.Action.Service)
		assert.Equal(t, 22, result.Action.Payload["temperature"])
	}
}

func TestDefaultEntityFromConfig(t *testing.T) {
	r := NewResolver(services.NewMockStore(), map[string]string{"light": "light.lounge"}, nil)
	result := r.Resolve(context.Background(), "turn on the light")
	assert.Equal(t, "light.lounge", result.Action.Payload["entity_id"])
}

func TestUnknownWithoutLLM(t *testing.T) {
	r := newTestResolver(nil)
	result := r.Resolve(context.Background(), "what's the meaning of life")
	assert.False(t, result.OK)
	assert.Nil(t, result.Action)
	assert.Contains(t, result.Message, "didn't understand")
}

func TestLLMAction(t *testing.T) {
	llm := &fakeCompleter{content: `{"domain": "light", "service": "toggle", "payload": {"entity_id": "light.hall"}}`}
	r := newTestResolver(llm)
	result := r.Resolve(context.Background(), "flip the hall light")
	assert.True(t, result.OK)
	if assert.NotNil(t, result.Action) {
		assert.Equal(t, "light", result.Action.Domain)
		assert.Equal(t, "toggle", result.Action.Service)
		assert.Equal(t, "light.hall", result.Action.Payload["entity_id"])
	}
}

func TestLLMMalformedReply(t *testing.T) {
	llm := &fakeCompleter{content: `Sure! I'd be happy to help with that.`}
	r := newTestResolver(llm)
	result := r.Resolve(context.Background(), "flip the hall light")
	assert.False(t, result.OK)
	assert.Nil(t, result.Action)
	assert.Equal(t, "I couldn't work out what to do. Could you rephrase that?", result.Message)
}

func TestLLMQuestion(t *testing.T) {
	llm := &fakeCompleter{content: `{"question": "Which light do you mean?"}`}
	r := newTestResolver(llm)
	result := r.Resolve(context.Background(), "turn it on")
	assert.False(t, result.OK)
	assert.Equal(t, "Which light do you mean?", result.Message)
}

func TestLLMUnavailable(t *testing.T) {
	llm := &fakeCompleter{err: errors.New("connection refused")}
	r := newTestResolver(llm)
	result := r.Resolve(context.Background(), "dim the lights")
	assert.False(t, result.OK)
	assert.Contains(t, result.Message, "unavailable")
}

func TestParseReplyValidation(t *testing.T) {
	_, _, err := parseReply(`{"domain": "Light!", "service": "turn_on"}`)
	assert.Error(t, err)

	_, _, err = parseReply(`{"domain": "light", "service": "turn_on", "extra": true}`)
	assert.Error(t, err)

	action, _, err := parseReply(`{"domain": "light", "service": "turn_on"}`)
	assert.NoError(t, err)
	assert.NotNil(t, action.Payload)
}

func TestActionEvent(t *testing.T) {
	action := &Action{
		Domain:  "light",
		Service: "turn_on",
		Payload: map[string]interface{}{"entity_id": "light.hall", "brightness": 128},
	}
	ev := action.Event()
	assert.Equal(t, "command/light.hall", ev.Topic)
	assert.Equal(t, "turn_on", ev.Command())
	assert.Equal(t, "light", ev.StringField("domain"))
	assert.Equal(t, 128, ev.Fields["brightness"])
}
