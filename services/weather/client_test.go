package weather

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleResponse = `{
	"name": "Brighton",
	"weather": [{"main": "Clouds", "description": "scattered clouds"}],
	"main": {"temp": 17.3, "feels_like": 16.8, "humidity": 72},
	"wind": {"speed": 4.6}
}`

func TestCurrent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Brighton,UK", r.URL.Query().Get("q"))
		assert.Equal(t, "secret", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	client := NewClient("secret", "Brighton,UK", "")
	client.baseURL = server.URL
	obs, err := client.Current()
	assert.NoError(t, err)
	assert.Equal(t, "Brighton", obs.Location)
	assert.Equal(t, "Clouds", obs.Condition)
	assert.Equal(t, 17.3, obs.Temperature)
	assert.Equal(t, 72, obs.Humidity)
}

func TestCurrentBadKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"cod": 401}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("wrong", "Brighton,UK", "")
	client.baseURL = server.URL
	_, err := client.Current()
	assert.Error(t, err)
}
