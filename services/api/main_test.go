package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oodog/binghome/config"
	"github.com/oodog/binghome/pubsub"
	"github.com/oodog/binghome/pubsub/dummy"
	"github.com/oodog/binghome/services"
)

func setup(t *testing.T) (*dummy.Publisher, *httptest.Server) {
	em := &dummy.Publisher{}
	services.Publisher = em
	services.Subscriber = &dummy.Subscriber{}
	services.Stor = services.NewMockStore()
	services.Settings = config.OpenSettings(path.Join(t.TempDir(), "settings.json"))
	conf, _ := config.OpenRaw([]byte(`
devices:
  light.hall:
    location: hallway
`))
	services.SetConfig(conf)

	service := &Service{hub: NewWsHub()}
	server := httptest.NewServer(service.router())
	t.Cleanup(server.Close)
	return em, server
}

func get(t *testing.T, server *httptest.Server, path string) *http.Response {
	resp, err := http.Get(server.URL + path)
	assert.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	_, server := setup(t)
	resp := get(t, server, "/api/health")
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
}

func TestSensorDataEmpty(t *testing.T) {
	_, server := setup(t)
	resp := get(t, server, "/api/sensor_data")
	assert.Equal(t, 404, resp.StatusCode)
}

func TestSensorData(t *testing.T) {
	_, server := setup(t)
	ev := pubsub.NewEvent("sensor", pubsub.Fields{
		"device":      "sensor.environment",
		"temperature": 21.5,
	})
	services.Stor.Set("binghome/state/sensor.environment", ev.String())

	resp := get(t, server, "/api/sensor_data")
	assert.Equal(t, 200, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "21.5")
}

func TestDevicesControl(t *testing.T) {
	em, server := setup(t)
	resp := get(t, server, "/api/devices/control?id=light.hall&command=turn_on")
	assert.Equal(t, 200, resp.StatusCode)
	if assert.Len(t, em.Events, 1) {
		assert.Equal(t, "command/light.hall", em.Events[0].Topic)
		assert.Equal(t, "turn_on", em.Events[0].Command())
	}
}

func TestDevicesControlUnknown(t *testing.T) {
	em, server := setup(t)
	resp := get(t, server, "/api/devices/control?id=light.nowhere&command=turn_on")
	assert.Equal(t, 404, resp.StatusCode)
	assert.Empty(t, em.Events)
}

func TestDevicesControlMissingParams(t *testing.T) {
	_, server := setup(t)
	resp := get(t, server, "/api/devices/control?id=light.hall")
	assert.Equal(t, 400, resp.StatusCode)
}

func TestSettingsRoundtrip(t *testing.T) {
	_, server := setup(t)
	resp := get(t, server, "/api/settings")
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "celsius")

	post, err := http.Post(server.URL+"/api/settings", "application/json",
		strings.NewReader(`{"theme": "light"}`))
	assert.NoError(t, err)
	defer post.Body.Close()
	assert.Equal(t, 200, post.StatusCode)
	assert.Equal(t, "light", services.Settings.GetString("theme"))
}

func TestVoiceMissingText(t *testing.T) {
	_, server := setup(t)
	post, err := http.Post(server.URL+"/api/voice", "application/json",
		strings.NewReader(`{"text": "  "}`))
	assert.NoError(t, err)
	defer post.Body.Close()
	assert.Equal(t, 400, post.StatusCode)
}

func TestDevices(t *testing.T) {
	_, server := setup(t)
	resp := get(t, server, "/api/devices")
	assert.Equal(t, 200, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "light.hall")
	assert.Contains(t, body, "hallway")
}

func readBody(t *testing.T, resp *http.Response) string {
	data, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	return string(data)
}
