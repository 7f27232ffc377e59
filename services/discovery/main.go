// Service detecting devices on the network by pinging them.
//
// Configured hosts (phones, mostly) are swept with icmp echo each
// interval. A device that answers is "home", one that stays silent
// for a few sweeps is "away". The dashboard shows this as presence.
package discovery

import (
	"log"
	"net"
	"sync"
	"time"

	"github.com/tatsushid/go-fastping"

	"github.com/oodog/binghome/pubsub"
	"github.com/oodog/binghome/services"
)

const defaultInterval = 30 * time.Second

// missed sweeps before a device is considered away
const awayAfter = 4

// Service discovery
type Service struct {
	mutex  sync.Mutex
	missed map[string]int  // device -> consecutive missed sweeps
	home   map[string]bool // device -> last emitted state
}

// ID of the service
func (self *Service) ID() string {
	return "discovery"
}

func (self *Service) Init() error {
	self.missed = map[string]int{}
	self.home = map[string]bool{}
	return nil
}

func emit(device string, home bool) {
	state := "away"
	if home {
		state = "home"
	}
	fields := pubsub.Fields{
		"device": device,
		"state":  state,
		"source": "discovery",
	}
	ev := pubsub.NewEvent("presence", fields)
	ev.SetRetained(true)
	services.Publisher.Emit(ev)
	log.Printf("%s is %s", device, state)
}

// sweep pings every configured host once, returning the set that
// answered.
func (self *Service) sweep(hosts map[string]string) map[string]bool {
	pinger := fastping.NewPinger()
	addrToDevice := map[string]string{}
	for device, host := range hosts {
		addr, err := net.ResolveIPAddr("ip4:icmp", host)
		if err != nil {
			log.Printf("Couldn't resolve %s (%s): %s", device, host, err)
			continue
		}
		pinger.AddIPAddr(addr)
		addrToDevice[addr.String()] = device
	}

	seen := map[string]bool{}
	var mutex sync.Mutex
	pinger.OnRecv = func(addr *net.IPAddr, rtt time.Duration) {
		mutex.Lock()
		if device, ok := addrToDevice[addr.String()]; ok {
			seen[device] = true
		}
		mutex.Unlock()
	}
	if err := pinger.Run(); err != nil {
		log.Println("Ping sweep failed:", err)
	}
	return seen
}

// update applies one sweep's results, emitting presence changes.
func (self *Service) update(hosts map[string]string, seen map[string]bool) {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	for device := range hosts {
		if seen[device] {
			self.missed[device] = 0
		} else {
			self.missed[device]++
		}

		home := self.missed[device] < awayAfter
		last, known := self.home[device]
		if !known || home != last {
			self.home[device] = home
			emit(device, home)
		}
	}
}

func (self *Service) queryPresence(q services.Question) string {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	if len(self.home) == 0 {
		return "No devices discovered yet"
	}
	out := ""
	for device, home := range self.home {
		state := "away"
		if home {
			state = "home"
		}
		out += device + ": " + state + "\n"
	}
	return out
}

func (self *Service) QueryHandlers() services.QueryHandlers {
	return services.QueryHandlers{
		"presence": services.TextHandler(self.queryPresence),
		"help":     services.StaticHandler("presence: who is home\n"),
	}
}

// Run the service
func (self *Service) Run() error {
	interval := services.Config().Discovery.Interval.Or(defaultInterval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for ; true; <-ticker.C {
		hosts := services.Config().Discovery.Hosts
		if len(hosts) == 0 {
			continue
		}
		seen := self.sweep(hosts)
		self.update(hosts, seen)
	}
	return nil
}
