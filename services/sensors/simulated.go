package sensors

import (
	"math/rand"
)

// Simulated readings for development off the Pi. Values drift within
// realistic indoor bounds: temperature 15-35C, humidity 30-70%.
type Simulated struct {
	rng *rand.Rand
}

func NewSimulated(seed int64) *Simulated {
	return &Simulated{rng: rand.New(rand.NewSource(seed))}
}

func (self *Simulated) Name() string {
	return "simulated"
}

var lightLevels = []string{"dark", "dim", "bright"}

func (self *Simulated) Read() (Reading, error) {
	return Reading{
		Temperature: 15 + self.rng.Float64()*20,
		Humidity:    30 + self.rng.Float64()*40,
		Gas:         self.rng.Intn(8) == 0,
		Light:       lightLevels[self.rng.Intn(len(lightLevels))],
	}, nil
}
