package services

import (
	"fmt"
	"strings"
	"sync"
)

// An in-memory Store. Used for tests, and as the fallback when redis
// isn't configured - so it takes the same concurrent traffic as the
// real store (recordEvents writing while other services read).
type MockStore struct {
	mutex sync.RWMutex
	data  map[string]string
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: map[string]string{},
	}
}

func (self *MockStore) Get(key string) (string, error) {
	self.mutex.RLock()
	defer self.mutex.RUnlock()
	if value, ok := self.data[key]; ok {
		return value, nil
	}
	return "", fmt.Errorf("key missing: %s", key)
}

func (self *MockStore) Set(key string, value string) error {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	self.data[key] = value
	return nil
}

func (self *MockStore) SetWithTTL(key string, value string, ttl uint64) error {
	return self.Set(key, value)
}

func (self *MockStore) Delete(key string) error {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	delete(self.data, key)
	return nil
}

func (self *MockStore) GetRecursive(prefix string) ([]Node, error) {
	self.mutex.RLock()
	defer self.mutex.RUnlock()
	var ret []Node
	for key, value := range self.data {
		if strings.HasPrefix(key, prefix) {
			ret = append(ret, Node{Key: key, Value: value})
		}
	}

	return ret, nil
}
