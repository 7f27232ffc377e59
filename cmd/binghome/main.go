package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/oodog/binghome/pubsub"
	"github.com/oodog/binghome/services"
	"github.com/oodog/binghome/services/api"
	"github.com/oodog/binghome/services/bluetooth"
	"github.com/oodog/binghome/services/discovery"
	"github.com/oodog/binghome/services/hub"
	"github.com/oodog/binghome/services/news"
	"github.com/oodog/binghome/services/routines"
	"github.com/oodog/binghome/services/sensors"
	"github.com/oodog/binghome/services/sysmon"
	"github.com/oodog/binghome/services/telegram"
	"github.com/oodog/binghome/services/voice"
	"github.com/oodog/binghome/services/weather"
	"github.com/oodog/binghome/services/wifi"
)

func registerServices() {
	// register available services
	services.Register(&api.Service{})
	services.Register(&bluetooth.Service{})
	services.Register(&discovery.Service{})
	services.Register(&hub.Service{})
	services.Register(&news.Service{})
	services.Register(&routines.Service{})
	services.Register(&sensors.Service{})
	services.Register(&sysmon.Service{})
	services.Register(&telegram.Service{})
	services.Register(&voice.Service{})
	services.Register(&weather.Service{})
	services.Register(&wifi.Service{})
}

// the everyday set, run when no services are named
var defaultServices = []string{
	"api", "hub", "news", "routines", "sensors", "sysmon", "voice", "weather", "wifi", "bluetooth",
}

func usage() {
	fmt.Println("Usage: binghome COMMAND [SERVICE...]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("   run    [service...]   Run services (default: the dashboard set)")
	fmt.Println("   query  ...            Query running services")
	fmt.Println("   listen [topic...]     Stream bus events to stdout")
	fmt.Println()
}

func main() {
	log.SetOutput(os.Stdout)
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	ps := []string{}
	if flag.NArg() > 1 {
		ps = flag.Args()[1:]
	}
	// ignore anything after '--'
	for i := range ps {
		if ps[i] == "--" {
			ps = ps[0:i]
			break
		}
	}

	command := flag.Args()[0]
	switch command {
	default:
		usage()
	case "run":
		run(ps)
	case "query":
		query(ps)
	case "listen":
		listen(ps)
	}
}

// Start builtin services
func run(ss []string) {
	if len(ss) == 0 {
		ss = defaultServices
	}
	services.Setup(strings.Join(ss, ","))
	registerServices()
	services.Launch(ss)
}

func query(ps []string) {
	if len(ps) == 0 {
		usage()
		os.Exit(1)
	}
	services.SetupLogging()
	services.SetupBroker("query")
	defer services.Shutdown()

	q := strings.Join(ps, " ")
	events := services.Query(q, 5*time.Second)
	if len(events) == 0 {
		fmt.Println("No response")
		os.Exit(1)
	}
	for _, ev := range events {
		source := ev.Source()
		message := ev.StringField("message")
		if message == "" {
			message = ev.String()
		}
		for _, line := range strings.Split(message, "\n") {
			if line != "" {
				fmt.Printf("%s: %s\n", source, line)
			}
		}
	}
}

func listen(ps []string) {
	services.SetupLogging()
	services.SetupBroker("listen")
	defer services.Shutdown()

	var topics []pubsub.Topic
	if len(ps) == 0 {
		topics = []pubsub.Topic{pubsub.All()}
	} else {
		for _, topic := range ps {
			topics = append(topics, pubsub.Exact(topic))
		}
	}
	for ev := range services.Subscriber.Subscribe(topics...) {
		fmt.Println(ev.String())
	}
}
