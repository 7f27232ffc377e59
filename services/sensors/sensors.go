package sensors

// Reading is one snapshot of all attached sensors.
type Reading struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Gas         bool    `json:"gas_detected"`
	Light       string  `json:"light"` // dark, dim, bright
}

// Source produces sensor readings, either from real GPIO hardware or
// simulated.
type Source interface {
	Name() string
	Read() (Reading, error)
}
