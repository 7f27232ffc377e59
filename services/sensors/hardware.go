package sensors

import (
	"github.com/d2r2/go-dht"
	"github.com/pkg/errors"
	"github.com/stianeikeland/go-rpio/v4"
)

// Hardware reads a DHT22 on one GPIO pin and digital gas/light sensors
// on two more. Default wiring: DHT 4, gas 17, light 27 (BCM).
type Hardware struct {
	dhtPin   int
	gasPin   rpio.Pin
	lightPin rpio.Pin
	retries  int
}

func NewHardware(dhtPin, gasPin, lightPin, retries int) (*Hardware, error) {
	if err := rpio.Open(); err != nil {
		return nil, errors.Wrap(err, "opening gpio")
	}
	if retries <= 0 {
		retries = 5
	}
	self := &Hardware{
		dhtPin:   dhtPin,
		gasPin:   rpio.Pin(gasPin),
		lightPin: rpio.Pin(lightPin),
		retries:  retries,
	}
	self.gasPin.Input()
	self.gasPin.PullDown()
	self.lightPin.Input()
	self.lightPin.PullDown()
	return self, nil
}

func (self *Hardware) Name() string {
	return "hardware"
}

func (self *Hardware) Read() (Reading, error) {
	temperature, humidity, _, err := dht.ReadDHTxxWithRetry(dht.DHT22, self.dhtPin, false, self.retries)
	if err != nil {
		return Reading{}, errors.Wrap(err, "reading dht22")
	}

	// the photoresistor module only gives a digital dark/bright signal
	light := "dark"
	if self.lightPin.Read() == rpio.High {
		light = "bright"
	}

	return Reading{
		Temperature: float64(temperature),
		Humidity:    float64(humidity),
		Gas:         self.gasPin.Read() == rpio.High,
		Light:       light,
	}, nil
}

func (self *Hardware) Close() {
	rpio.Close()
}
