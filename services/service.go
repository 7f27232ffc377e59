package services

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/oodog/binghome/config"
	"github.com/oodog/binghome/pubsub"
	"github.com/oodog/binghome/pubsub/mqtt"
)

// Service interface
type Service interface {
	ID() string
	Run() error
}

// ServiceInit interface for services needing setup before Run
type ServiceInit interface {
	Service
	Init() error
}

type Flags interface {
	Flags()
}

var serviceMap = map[string]Service{}
var enabled []Service

// Shared by all services in the process.
var current atomic.Pointer[config.Config]
var Settings *config.Settings
var Stor Store
var Publisher pubsub.Publisher
var Subscriber pubsub.Subscriber

// Config returns the current configuration. Hot reloads swap the
// pointer, so don't cache it across config events.
func Config() *config.Config {
	return current.Load()
}

func SetConfig(conf *config.Config) {
	current.Store(conf)
}

func SetupLogging() {
	log.SetFlags(log.Ltime | log.Lmicroseconds)
	log.SetOutput(os.Stdout)
}

func SetupBroker(name string) {
	url := os.Getenv("BINGHOME_MQTT")
	if url == "" {
		log.Fatalln("Set BINGHOME_MQTT to the mqtt server. eg: tcp://127.0.0.1:1883")
	}

	broker := mqtt.NewBroker(url, name)
	Publisher = broker.Publisher()
	if Publisher == nil {
		log.Fatalln("Failed to initialise pub endpoint")
	}
	Subscriber = broker.Subscriber()
	if Subscriber == nil {
		log.Fatalln("Failed to initialise sub endpoint")
	}
}

func SetupStore() {
	address := os.Getenv("BINGHOME_REDIS")
	if address == "" {
		// still functional, state just doesn't survive restarts
		log.Println("BINGHOME_REDIS not set, using in-memory store")
		Stor = NewMockStore()
		return
	}
	store, err := NewRedisStore(address)
	if err != nil {
		log.Fatalln("Couldn't connect to redis:", err)
	}
	Stor = store
}

func SetupConfig() {
	conf, err := config.Open()
	if err != nil {
		log.Fatalln("Error opening config:", err)
	}
	SetConfig(conf)
	Settings = config.OpenSettings(config.ConfigPath("settings.json"))
	// follow config updates pushed over the bus
	go watchConfig()
}

// watchConfig reloads Config when a config event arrives.
func watchConfig() {
	for ev := range Subscriber.Subscribe(pubsub.Exact("config")) {
		_ = ev
		conf, err := config.Open()
		if err != nil {
			log.Println("Error reloading config:", err)
			continue
		}
		SetConfig(conf)
		log.Println("Config reloaded")
	}
}

func Setup(name string) {
	SetupLogging()
	SetupBroker(name)
	SetupStore()
	SetupConfig()
}

func SetupFlags() {
	for _, service := range enabled {
		// any service specific flags
		if f, ok := service.(Flags); ok {
			f.Flags()
		}
	}
	flag.Parse()
}

func Launch(ss []string) {
	enabled = []Service{}
	for _, name := range ss {
		if service, ok := serviceMap[name]; ok {
			enabled = append(enabled, service)
		} else {
			log.Fatalf("Service %s does not exist", name)
		}
	}

	if len(enabled) == 0 {
		log.Fatalln("No services to run")
	}

	SetupFlags()

	// listen for queries
	go QuerySubscriber()

	for _, service := range enabled {
		if service, ok := service.(ServiceInit); ok {
			err := service.Init()
			if err != nil {
				log.Fatalf("Error init service %s: %s", service.ID(), err.Error())
			}
			log.Printf("Initialized %s\n", service.ID())
		}
	}

	for _, service := range enabled[1:] {
		go runService(service)
	}
	// run the first service on the main goroutine
	runService(enabled[0])
}

func runService(service Service) {
	log.Printf("Starting %s\n", service.ID())
	go Heartbeat(service.ID())
	err := service.Run()
	if err != nil {
		log.Fatalf("Error running service %s: %s", service.ID(), err.Error())
	}
}

// Heartbeat publishes a retained heartbeat event every minute, so the
// dashboard can tell which services are alive.
func Heartbeat(id string) {
	started := time.Now()
	device := fmt.Sprintf("heartbeat.%s", id)
	fields := pubsub.Fields{
		"device":  device,
		"pid":     os.Getpid(),
		"started": started.Format(time.RFC3339),
	}

	// wait 5 seconds before heartbeating - if the process dies very soon
	time.Sleep(time.Second * 5)

	for {
		uptime := int(time.Since(started).Seconds())
		fields["uptime"] = uptime
		ev := pubsub.NewEvent("heartbeat", fields)
		ev.SetRetained(true)
		Publisher.Emit(ev)
		time.Sleep(time.Second * 60)
	}
}

func Register(service Service) {
	if _, exists := serviceMap[service.ID()]; exists {
		log.Fatalf("Duplicate service registered: %s", service.ID())
	}
	serviceMap[service.ID()] = service
}

// MatchDevices finds switchable devices matching a partial name.
func MatchDevices(n string) []string {
	devices := Config().Devices
	if _, ok := devices[n]; ok {
		return []string{n}
	}

	matches := []string{}
	for name, dev := range devices {
		if dev.IsSwitchable() && containsFold(name, n) {
			matches = append(matches, name)
		}
	}
	return matches
}

func Shutdown() {
	if Publisher != nil {
		Publisher.Close()
	}
}
