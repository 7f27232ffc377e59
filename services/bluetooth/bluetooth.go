package bluetooth

import (
	"os/exec"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Device is a known or discovered bluetooth device.
type Device struct {
	Address   string `json:"address"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
}

type runner func(args ...string) (string, error)

func bluetoothctl(args ...string) (string, error) {
	out, err := exec.Command("bluetoothctl", args...).CombinedOutput()
	if err != nil {
		return "", errors.Wrapf(err, "bluetoothctl %s: %s", strings.Join(args, " "), strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

var reDevice = regexp.MustCompile(`^Device ((?:[0-9A-F]{2}:){5}[0-9A-F]{2}) (.+)$`)

// parseDevices parses `bluetoothctl devices` output lines of the form
// "Device AA:BB:CC:DD:EE:FF Some Speaker".
func parseDevices(output string) []Device {
	var devices []Device
	for _, line := range strings.Split(output, "\n") {
		if m := reDevice.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			devices = append(devices, Device{Address: m[1], Name: m[2]})
		}
	}
	return devices
}

// parseConnected reports whether an `bluetoothctl info` dump says the
// device is connected.
func parseConnected(output string) bool {
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "Connected: yes" {
			return true
		}
	}
	return false
}

func listDevices(run runner) ([]Device, error) {
	output, err := run("devices")
	if err != nil {
		return nil, err
	}
	devices := parseDevices(output)
	for i, device := range devices {
		info, err := run("info", device.Address)
		if err != nil {
			continue
		}
		devices[i].Connected = parseConnected(info)
	}
	return devices, nil
}

func connectDevice(run runner, address string) error {
	output, err := run("connect", address)
	if err != nil {
		return err
	}
	if !strings.Contains(output, "Connection successful") {
		return errors.Errorf("connect failed: %s", strings.TrimSpace(output))
	}
	return nil
}

func disconnectDevice(run runner, address string) error {
	_, err := run("disconnect", address)
	return err
}
