package wifi

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const scanOutput = `yes:HomeNet:82:WPA2
no:HomeNet:45:WPA2
no:CoffeeShop\: Free:60:--
no::30:WPA1
no:Nextdoor:71:WPA2 WPA3
`

func TestParseScan(t *testing.T) {
	networks := parseScan(scanOutput)
	if assert.Len(t, networks, 3) {
		assert.Equal(t, "HomeNet", networks[0].Ssid)
		assert.Equal(t, 82, networks[0].Signal)
		assert.True(t, networks[0].Active)
		assert.Equal(t, "Nextdoor", networks[1].Ssid)
		assert.Equal(t, "CoffeeShop: Free", networks[2].Ssid)
		assert.Equal(t, "--", networks[2].Security)
	}
}

func TestParseScanPrefersActive(t *testing.T) {
	// a stronger bss of the same ssid must not displace the active one
	networks := parseScan("yes:HomeNet:40:WPA2\nno:HomeNet:90:WPA2\n")
	if assert.Len(t, networks, 1) {
		assert.True(t, networks[0].Active)
		assert.Equal(t, 40, networks[0].Signal)
	}

	// active listed second still wins
	networks = parseScan("no:HomeNet:90:WPA2\nyes:HomeNet:40:WPA2\n")
	if assert.Len(t, networks, 1) {
		assert.True(t, networks[0].Active)
	}
}

func TestParseScanEmpty(t *testing.T) {
	assert.Empty(t, parseScan(""))
	assert.Empty(t, parseScan("garbage with no colons"))
}

func TestScanArgs(t *testing.T) {
	var gotArgs []string
	run := func(args ...string) (string, error) {
		gotArgs = args
		return scanOutput, nil
	}
	networks, err := scan(run, "wlan0")
	assert.NoError(t, err)
	assert.NotEmpty(t, networks)
	assert.Equal(t, "ifname wlan0", strings.Join(gotArgs[len(gotArgs)-2:], " "))
}

func TestConnect(t *testing.T) {
	var gotArgs []string
	run := func(args ...string) (string, error) {
		gotArgs = args
		return "Device 'wlan0' successfully activated", nil
	}
	err := connect(run, "", "HomeNet", "hunter2")
	assert.NoError(t, err)
	assert.Equal(t, []string{"dev", "wifi", "connect", "HomeNet", "password", "hunter2"}, gotArgs)
}

func TestConnectFailure(t *testing.T) {
	run := func(args ...string) (string, error) {
		return "", errors.New("exit status 10")
	}
	err := connect(run, "", "HomeNet", "wrong")
	assert.Error(t, err)
}
