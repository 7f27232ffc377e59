package pubsub

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ExampleNewEvent() {
	fields := Fields{"device": "light.kitchen", "timestamp": "2024-03-01 18:00:00.000000"}
	ev := NewEvent("state", fields)
	fmt.Println(ev.Topic, ev.Device(), ev.Timestamp.Format("15:04"))
	// Output:
	// state light.kitchen 18:00
}

func ExampleNewCommand() {
	ev := NewCommand("fan.living_room", "turn_on")
	fmt.Println(ev.Topic)
	fmt.Println(ev.Device(), ev.Command())
	// Output:
	// command/fan.living_room
	// fan.living_room turn_on
}

func TestRoundtrip(t *testing.T) {
	ev := NewCommand("light.bedroom_1", "turn_off")
	ev.SetField("brightness", 50.0)

	parsed := Parse(string(ev.Bytes()), "")
	assert.NotNil(t, parsed)
	assert.Equal(t, "command/light.bedroom_1", parsed.Topic)
	assert.Equal(t, "turn_off", parsed.Command())
	assert.Equal(t, int64(50), parsed.IntField("brightness"))
	assert.Equal(t, ev.Timestamp.Format(TimeFormat), parsed.Timestamp.Format(TimeFormat))
}

func TestParseTopicOverride(t *testing.T) {
	parsed := Parse(`{"device":"gas.kiosk","state":"alert"}`, "gas")
	assert.NotNil(t, parsed)
	assert.Equal(t, "gas", parsed.Topic)
	assert.Equal(t, "alert", parsed.State())
}

func TestParseGarbage(t *testing.T) {
	assert.Nil(t, Parse("not json", "x"))
	assert.Nil(t, Parse(`{"a":1}`, ""))
}

func TestMatchers(t *testing.T) {
	assert.True(t, Exact("command").Match("command"))
	assert.False(t, Exact("command").Match("command/light.hall"))
	assert.True(t, Prefix("command").Match("command/light.hall"))
	assert.True(t, Prefix("command").Match("command"))
	assert.False(t, Prefix("command").Match("commander"))
	assert.True(t, All().Match("anything"))
}
