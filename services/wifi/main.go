// Service managing the wifi connection through NetworkManager.
//
// The dashboard reaches this over query rpc: 'wifi/scan' lists visible
// networks, 'wifi/connect ssid [password]' joins one.
package wifi

import (
	"fmt"
	"log"
	"strings"

	"github.com/oodog/binghome/services"
)

// Service wifi
type Service struct {
	run   runner
	iface string
}

// ID of the service
func (self *Service) ID() string {
	return "wifi"
}

func (self *Service) Init() error {
	self.run = nmcli
	self.iface = services.Config().Wifi.Interface
	return nil
}

func (self *Service) queryScan(q services.Question) services.Answer {
	networks, err := scan(self.run, self.iface)
	if err != nil {
		return services.Answer{Text: fmt.Sprintf("Scan failed: %s", err)}
	}
	var lines []string
	for _, network := range networks {
		marker := ""
		if network.Active {
			marker = " *"
		}
		lines = append(lines, fmt.Sprintf("%s (%d%%, %s)%s", network.Ssid, network.Signal, network.Security, marker))
	}
	return services.Answer{
		Text: strings.Join(lines, "\n"),
		Json: networks,
	}
}

func (self *Service) queryConnect(q services.Question) string {
	parts := strings.SplitN(q.Args, " ", 2)
	if parts[0] == "" {
		return "Usage: connect ssid [password]"
	}
	ssid := parts[0]
	password := ""
	if len(parts) > 1 {
		password = parts[1]
	}
	if err := connect(self.run, self.iface, ssid, password); err != nil {
		log.Println("Wifi connect failed:", err)
		return fmt.Sprintf("Couldn't connect to %s: %s", ssid, err)
	}
	return fmt.Sprintf("Connected to %s", ssid)
}

func (self *Service) QueryHandlers() services.QueryHandlers {
	return services.QueryHandlers{
		"scan":    self.queryScan,
		"connect": services.TextHandler(self.queryConnect),
		"help": services.StaticHandler("" +
			"scan: list visible wifi networks\n" +
			"connect ssid [password]: join a wifi network\n"),
	}
}

// Run the service
func (self *Service) Run() error {
	select {}
}
