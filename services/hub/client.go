package hub

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Client talks to a Home Assistant instance over its REST API.
type Client struct {
	url    string
	token  string
	client *http.Client
}

func NewClient(url, token string, timeout time.Duration) *Client {
	return &Client{
		url:    strings.TrimRight(url, "/"),
		token:  token,
		client: &http.Client{Timeout: timeout},
	}
}

// State of a single entity, as reported by the hub.
type State struct {
	EntityId    string                 `json:"entity_id"`
	State       string                 `json:"state"`
	Attributes  map[string]interface{} `json:"attributes"`
	LastChanged time.Time              `json:"last_changed"`
}

func (self *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+self.token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := self.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("hub returned %s: %s", resp.Status, body)
	}
	return resp, nil
}

// CallService invokes a hub service (domain "light", service "turn_on")
// with a json payload.
func (self *Client) CallService(domain, service string, payload map[string]interface{}) error {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/api/services/%s/%s", self.url, domain, service)
	req, err := http.NewRequest("POST", url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	resp, err := self.do(req)
	if err != nil {
		return errors.Wrapf(err, "calling %s.%s", domain, service)
	}
	resp.Body.Close()
	return nil
}

// States fetches the current state of every entity.
func (self *Client) States() ([]State, error) {
	req, err := http.NewRequest("GET", self.url+"/api/states", nil)
	if err != nil {
		return nil, err
	}
	resp, err := self.do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetching states")
	}
	defer resp.Body.Close()
	var states []State
	if err := json.NewDecoder(resp.Body).Decode(&states); err != nil {
		return nil, errors.Wrap(err, "decoding states")
	}
	return states, nil
}

// GetState fetches a single entity state. Returns nil when the hub
// doesn't know the entity.
func (self *Client) GetState(entity string) (*State, error) {
	req, err := http.NewRequest("GET", self.url+"/api/states/"+entity, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+self.token)
	resp, err := self.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("hub returned %s", resp.Status)
	}
	var state State
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, err
	}
	return &state, nil
}
