package weather

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

const openWeatherMapURL = "https://api.openweathermap.org/data/2.5/weather"

// Observation is a current weather report for the configured location.
type Observation struct {
	Location    string  `json:"location"`
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feels_like"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
}

// Client fetches weather from OpenWeatherMap.
type Client struct {
	baseURL  string
	apiKey   string
	location string
	units    string
	client   *http.Client
}

func NewClient(apiKey, location, units string) *Client {
	if units == "" {
		units = "metric"
	}
	return &Client{
		baseURL:  openWeatherMapURL,
		apiKey:   apiKey,
		location: location,
		units:    units,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type owmResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Current fetches the current observation.
func (self *Client) Current() (*Observation, error) {
	params := url.Values{}
	params.Set("q", self.location)
	params.Set("appid", self.apiKey)
	params.Set("units", self.units)

	resp, err := self.client.Get(self.baseURL + "?" + params.Encode())
	if err != nil {
		return nil, errors.Wrap(err, "fetching weather")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather api returned %s", resp.Status)
	}

	var data owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, errors.Wrap(err, "decoding weather")
	}

	obs := &Observation{
		Location:    data.Name,
		Temperature: data.Main.Temp,
		FeelsLike:   data.Main.FeelsLike,
		Humidity:    data.Main.Humidity,
		WindSpeed:   data.Wind.Speed,
	}
	if len(data.Weather) > 0 {
		obs.Condition = data.Weather[0].Main
		obs.Description = data.Weather[0].Description
	}
	return obs, nil
}

func (self *Observation) String() string {
	return fmt.Sprintf("%s: %s, %.1f° (feels like %.1f°), humidity %d%%, wind %.1f",
		self.Location, self.Description, self.Temperature, self.FeelsLike, self.Humidity, self.WindSpeed)
}
