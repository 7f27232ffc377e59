// Service managing bluetooth devices through bluetoothctl.
package bluetooth

import (
	"fmt"
	"strings"

	"github.com/oodog/binghome/services"
)

// Service bluetooth
type Service struct {
	run runner
}

// ID of the service
func (self *Service) ID() string {
	return "bluetooth"
}

func (self *Service) Init() error {
	self.run = bluetoothctl
	return nil
}

func (self *Service) queryDevices(q services.Question) services.Answer {
	devices, err := listDevices(self.run)
	if err != nil {
		return services.Answer{Text: fmt.Sprintf("Bluetooth unavailable: %s", err)}
	}
	if len(devices) == 0 {
		return services.Answer{Text: "No bluetooth devices known", Json: []Device{}}
	}
	var lines []string
	for _, device := range devices {
		state := "disconnected"
		if device.Connected {
			state = "connected"
		}
		lines = append(lines, fmt.Sprintf("%s %s (%s)", device.Address, device.Name, state))
	}
	return services.Answer{Text: strings.Join(lines, "\n"), Json: devices}
}

func (self *Service) queryConnect(q services.Question) string {
	address := strings.TrimSpace(q.Args)
	if address == "" {
		return "Usage: pair AA:BB:CC:DD:EE:FF"
	}
	if err := connectDevice(self.run, address); err != nil {
		return fmt.Sprintf("Couldn't connect %s: %s", address, err)
	}
	return fmt.Sprintf("Connected %s", address)
}

func (self *Service) queryDisconnect(q services.Question) string {
	address := strings.TrimSpace(q.Args)
	if address == "" {
		return "Usage: unpair AA:BB:CC:DD:EE:FF"
	}
	if err := disconnectDevice(self.run, address); err != nil {
		return fmt.Sprintf("Couldn't disconnect %s: %s", address, err)
	}
	return fmt.Sprintf("Disconnected %s", address)
}

func (self *Service) QueryHandlers() services.QueryHandlers {
	return services.QueryHandlers{
		"devices": self.queryDevices,
		"pair":    services.TextHandler(self.queryConnect),
		"unpair":  services.TextHandler(self.queryDisconnect),
		"help": services.StaticHandler("" +
			"devices: list bluetooth devices\n" +
			"pair address: connect a bluetooth device\n" +
			"unpair address: disconnect a bluetooth device\n"),
	}
}

// Run the service
func (self *Service) Run() error {
	select {}
}
