package hub

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCallService(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", time.Second)
	err := client.CallService("light", "turn_on", map[string]interface{}{"entity_id": "light.hall"})
	assert.NoError(t, err)
	assert.Equal(t, "/api/services/light/turn_on", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "light.hall", gotBody["entity_id"])
}

func TestCallServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "wrong", time.Second)
	err := client.CallService("light", "turn_on", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestStates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/states", r.URL.Path)
		w.Write([]byte(`[{"entity_id": "light.hall", "state": "on", "attributes": {"brightness": 200}}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", time.Second)
	states, err := client.States()
	assert.NoError(t, err)
	if assert.Len(t, states, 1) {
		assert.Equal(t, "light.hall", states[0].EntityId)
		assert.Equal(t, "on", states[0].State)
		assert.Equal(t, 200.0, states[0].Attributes["brightness"])
	}
}

func TestGetStateMissing(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := NewClient(server.URL, "secret", time.Second)
	state, err := client.GetState("light.nowhere")
	assert.NoError(t, err)
	assert.Nil(t, state)
}
