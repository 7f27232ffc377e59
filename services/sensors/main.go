// Service polling the attached environment sensors.
//
// Readings are published as retained sensor events for the dashboard.
// A gas detection additionally raises an alert, once per episode
// rather than on every poll.
package sensors

import (
	"fmt"
	"log"
	"time"

	"github.com/oodog/binghome/pubsub"
	"github.com/oodog/binghome/services"
)

const defaultInterval = 5 * time.Second

// Service sensors
type Service struct {
	source Source
	last   Reading
	gasOn  bool
}

// ID of the service
func (self *Service) ID() string {
	return "sensors"
}

func (self *Service) Init() error {
	conf := services.Config().Sensors
	switch conf.Source {
	case "", "simulated":
		self.source = NewSimulated(time.Now().UnixNano())
	case "hardware":
		pins := conf.Pins
		if pins.Dht == 0 {
			pins.Dht = 4
		}
		if pins.Gas == 0 {
			pins.Gas = 17
		}
		if pins.Light == 0 {
			pins.Light = 27
		}
		source, err := NewHardware(pins.Dht, pins.Gas, pins.Light, conf.Retries)
		if err != nil {
			return err
		}
		self.source = source
	default:
		return fmt.Errorf("unknown sensor source: %s", conf.Source)
	}
	log.Println("Using", self.source.Name(), "sensors")
	return nil
}

func (self *Service) publish(reading Reading) {
	fields := pubsub.Fields{
		"source":      "sensors",
		"device":      "sensor.environment",
		"temperature": reading.Temperature,
		"humidity":    reading.Humidity,
		"gas":         reading.Gas,
		"light":       reading.Light,
	}
	ev := pubsub.NewEvent("sensor", fields)
	ev.SetRetained(true)
	services.Publisher.Emit(ev)

	if reading.Gas && !self.gasOn {
		fields := pubsub.Fields{
			"source":  "sensors",
			"message": "Gas detected!",
		}
		services.Publisher.Emit(pubsub.NewEvent("alert", fields))
	}
	self.gasOn = reading.Gas
	self.last = reading
}

func (self *Service) queryStatus(q services.Question) string {
	return fmt.Sprintf("%.1fC %.0f%% humidity, light %s, gas: %t",
		self.last.Temperature, self.last.Humidity, self.last.Light, self.last.Gas)
}

func (self *Service) QueryHandlers() services.QueryHandlers {
	return services.QueryHandlers{
		"sensors": services.TextHandler(self.queryStatus),
		"help":    services.StaticHandler("sensors: latest sensor readings\n"),
	}
}

// Run the service
func (self *Service) Run() error {
	interval := services.Config().Sensors.Interval.Or(defaultInterval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for ; true; <-ticker.C {
		reading, err := self.source.Read()
		if err != nil {
			log.Println("Error reading sensors:", err)
			continue
		}
		self.publish(reading)
	}
	return nil
}
