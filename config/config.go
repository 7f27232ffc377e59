package config

import (
	"io"
	"os"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

type DeviceConf struct {
	Id       string `json:"id" yaml:"-"`
	Name     string `json:"name"`
	Domain   string `json:"domain"`
	Location string `json:"location"`
}

// IsSwitchable reports whether the device accepts on/off commands.
func (d DeviceConf) IsSwitchable() bool {
	switch d.Domain {
	case "light", "fan", "switch":
		return true
	}
	return false
}

type EndpointsConf struct {
	Mqtt struct {
		Broker string
	}
	Api string
}

type HubConf struct {
	Url     string
	Token   string
	Timeout Duration
}

type WeatherConf struct {
	ApiKey   string `yaml:"api_key"`
	Location string
	Units    string
	Interval Duration
}

type NewsConf struct {
	ApiKey   string `yaml:"api_key"`
	Market   string
	Category string
	Count    int
	Interval Duration
}

type AssistantConf struct {
	ApiKey  string `yaml:"api_key"`
	Model   string
	Default map[string]string // domain -> fallback entity id
}

type PinsConf struct {
	Dht   int
	Gas   int
	Light int
}

type SensorsConf struct {
	Source   string // "hardware" or "simulated"
	Pins     PinsConf
	Interval Duration
	Retries  int
}

type RoutineConf struct {
	Name    string
	Time    string   // "HH:MM", 24 hour clock
	Days    []string // mon..sun, empty means every day
	Device  string
	Command string
}

type WifiConf struct {
	Interface string
}

type TelegramConf struct {
	Token  string
	ChatId int64 `yaml:"chat_id"`
}

type DiscoveryConf struct {
	Hosts    map[string]string // device name -> host/ip
	Interval Duration
}

// Duration adds yaml parsing of "30s" style values.
type Duration struct {
	Duration time.Duration
}

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var value string
	if err := unmarshal(&value); err != nil {
		return err
	}
	val, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	d.Duration = val
	return nil
}

// Or returns the configured duration, or fallback when unset.
func (d Duration) Or(fallback time.Duration) time.Duration {
	if d.Duration == 0 {
		return fallback
	}
	return d.Duration
}

// Configuration structure
type Config struct {
	Devices   map[string]DeviceConf
	Endpoints EndpointsConf
	Assistant AssistantConf
	Discovery DiscoveryConf
	Hub       HubConf
	News      NewsConf
	Routines  []RoutineConf
	Sensors   SensorsConf
	Telegram  TelegramConf
	Weather   WeatherConf
	Wifi      WifiConf
}

// Open configuration from disk.
func Open() (*Config, error) {
	file, err := os.Open(ConfigPath("binghome.yml"))
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return OpenReader(file)
}

// Open configuration from a reader.
func OpenReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return OpenRaw(data)
}

// Open configuration from []byte.
func OpenRaw(data []byte) (*Config, error) {
	self := &Config{}
	err := yaml.Unmarshal(data, self)
	if err != nil {
		return nil, err
	}

	for id, device := range self.Devices {
		device.Id = id
		ps := strings.SplitN(id, ".", 2)
		if device.Domain == "" {
			device.Domain = ps[0]
		}
		if device.Name == "" {
			device.Name = strings.Replace(ps[len(ps)-1], "_", " ", -1)
		}
		self.Devices[id] = device
	}

	return self, nil
}

// DevicesByDomain returns the devices in a given domain ("light", "fan").
func (self *Config) DevicesByDomain(domain string) []DeviceConf {
	var ret []DeviceConf
	for _, device := range self.Devices {
		if device.Domain == domain {
			ret = append(ret, device)
		}
	}
	return ret
}

// helpers

// Resolve a configuration file under .config/binghome
func ConfigPath(p string) string {
	config := os.Getenv("XDG_CONFIG_HOME")
	if config == "" {
		config = path.Join(os.Getenv("HOME"), ".config")
	}
	return path.Join(config, "binghome", p)
}
