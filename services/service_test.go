package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oodog/binghome/config"
)

// Hot reloads swap the config pointer while service goroutines read
// it; readers must always see a complete config, old or new.
func TestConfigHotSwap(t *testing.T) {
	a, err := config.OpenRaw([]byte("devices:\n  light.a: {}\n"))
	assert.NoError(t, err)
	b, err := config.OpenRaw([]byte("devices:\n  light.b: {}\n"))
	assert.NoError(t, err)
	SetConfig(a)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			if i%2 == 0 {
				SetConfig(b)
			} else {
				SetConfig(a)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			conf := Config()
			assert.Len(t, conf.Devices, 1)
		}
	}()
	wg.Wait()
}
