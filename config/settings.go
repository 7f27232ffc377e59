package config

import (
	"encoding/json"
	"os"
	"sync"
)

// Defaults filled in for settings keys missing from the file on disk.
var DefaultSettings = map[string]interface{}{
	"language":          "en-US",
	"temperature_unit":  "celsius",
	"theme":             "dark",
	"news_refresh_rate": 300.0,
	"sensor_push_rate":  5.0,
}

// Settings is the runtime-mutable half of configuration: a flat JSON
// file of user preferences, persisted on every change. All access goes
// through one mutex, the only writer of the file.
type Settings struct {
	path   string
	mutex  sync.Mutex
	values map[string]interface{}
}

// OpenSettings loads settings from path, merging defaults for missing
// keys. A missing or unreadable file yields pure defaults.
func OpenSettings(path string) *Settings {
	self := &Settings{path: path, values: map[string]interface{}{}}
	data, err := os.ReadFile(path)
	if err == nil {
		json.Unmarshal(data, &self.values)
	}
	for key, value := range DefaultSettings {
		if _, ok := self.values[key]; !ok {
			self.values[key] = value
		}
	}
	return self
}

func (self *Settings) Get(key string) interface{} {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	return self.values[key]
}

func (self *Settings) GetString(key string) string {
	ret, _ := self.Get(key).(string)
	return ret
}

func (self *Settings) GetFloat(key string) float64 {
	ret, _ := self.Get(key).(float64)
	return ret
}

// Set stores a value and persists the file immediately.
func (self *Settings) Set(key string, value interface{}) error {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	self.values[key] = value
	return self.save()
}

// Update stores several values under one write.
func (self *Settings) Update(values map[string]interface{}) error {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	for key, value := range values {
		self.values[key] = value
	}
	return self.save()
}

func (self *Settings) Delete(key string) error {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	delete(self.values, key)
	return self.save()
}

// Snapshot returns a copy safe to hand to encoders.
func (self *Settings) Snapshot() map[string]interface{} {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	ret := make(map[string]interface{}, len(self.values))
	for key, value := range self.values {
		ret[key] = value
	}
	return ret
}

// save writes atomically: temp file then rename.
func (self *Settings) save() error {
	data, err := json.MarshalIndent(self.values, "", "  ")
	if err != nil {
		return err
	}
	tmp := self.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, self.path)
}
