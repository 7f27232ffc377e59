package config

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var yml = `
devices:
  light.living_room:
    location: living room
  fan.bedroom:
    name: ceiling fan
  sensor.kiosk:
    name: kiosk sensors
hub:
  url: http://localhost:8123
  timeout: 5s
sensors:
  source: simulated
  interval: 5s
  pins:
    dht: 4
    gas: 17
    light: 27
`

func ExampleOpenRaw() {
	config, _ := OpenRaw([]byte(yml))
	fmt.Println(config.Hub.Url)
	fmt.Println(config.Sensors.Pins.Gas)
	// Output:
	// http://localhost:8123
	// 17
}

func TestDeviceDefaults(t *testing.T) {
	config, err := OpenRaw([]byte(yml))
	assert.NoError(t, err)

	dev := config.Devices["light.living_room"]
	assert.Equal(t, "light.living_room", dev.Id)
	assert.Equal(t, "light", dev.Domain)
	assert.Equal(t, "living room", dev.Name)
	assert.True(t, dev.IsSwitchable())

	fan := config.Devices["fan.bedroom"]
	assert.Equal(t, "ceiling fan", fan.Name)

	sensor := config.Devices["sensor.kiosk"]
	assert.False(t, sensor.IsSwitchable())
}

func TestDevicesByDomain(t *testing.T) {
	config, err := OpenRaw([]byte(yml))
	assert.NoError(t, err)
	assert.Len(t, config.DevicesByDomain("light"), 1)
	assert.Len(t, config.DevicesByDomain("camera"), 0)
}

func TestDuration(t *testing.T) {
	config, err := OpenRaw([]byte(yml))
	assert.NoError(t, err)
	assert.Equal(t, "5s", config.Hub.Timeout.Duration.String())
	assert.Equal(t, "10s", config.News.Interval.Or(10*time.Second).String())
}
