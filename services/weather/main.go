// Service polling current weather for the dashboard.
package weather

import (
	"fmt"
	"log"
	"time"

	"github.com/oodog/binghome/pubsub"
	"github.com/oodog/binghome/services"
)

const defaultInterval = 10 * time.Minute

// Service weather
type Service struct {
	client *Client
	last   *Observation
}

// ID of the service
func (self *Service) ID() string {
	return "weather"
}

func (self *Service) Init() error {
	conf := services.Config().Weather
	if conf.ApiKey == "" {
		return fmt.Errorf("weather api_key not configured")
	}
	location := conf.Location
	if location == "" {
		location = "London"
	}
	self.client = NewClient(conf.ApiKey, location, conf.Units)
	return nil
}

func (self *Service) poll() {
	obs, err := self.client.Current()
	if err != nil {
		log.Println("Error fetching weather:", err)
		return
	}
	self.last = obs
	fields := pubsub.Fields{
		"source":      "weather",
		"location":    obs.Location,
		"condition":   obs.Condition,
		"description": obs.Description,
		"temperature": obs.Temperature,
		"feels_like":  obs.FeelsLike,
		"humidity":    obs.Humidity,
		"wind_speed":  obs.WindSpeed,
	}
	ev := pubsub.NewEvent("weather", fields)
	ev.SetRetained(true)
	services.Publisher.Emit(ev)
}

func (self *Service) queryWeather(q services.Question) services.Answer {
	if self.last == nil {
		return services.Answer{Text: "No weather report yet"}
	}
	return services.Answer{Text: self.last.String(), Json: self.last}
}

func (self *Service) QueryHandlers() services.QueryHandlers {
	return services.QueryHandlers{
		"weather": self.queryWeather,
		"help":    services.StaticHandler("weather: current weather report\n"),
	}
}

// Run the service
func (self *Service) Run() error {
	interval := services.Config().Weather.Interval.Or(defaultInterval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for ; true; <-ticker.C {
		self.poll()
	}
	return nil
}
