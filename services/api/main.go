// Package api is a service providing the HTTP REST API behind the
// dashboard.
//
// The endpoints supported are:
//
// http://localhost:8723/api/health - liveness check
//
// http://localhost:8723/api/sensor_data - latest sensor readings
//
// http://localhost:8723/api/weather - current weather report
//
// http://localhost:8723/api/news - news headlines
//
// http://localhost:8723/api/voice - POST {"text": ...} to run a voice command
//
// http://localhost:8723/api/devices - list of devices with last state
//
// http://localhost:8723/api/devices/control?id=light.hall&command=turn_on - control a device
//
// http://localhost:8723/api/settings - GET settings or POST updates
//
// http://localhost:8723/api/wifi/scan - visible wifi networks
//
// http://localhost:8723/api/wifi/connect - POST {"ssid": ..., "password": ...}
//
// http://localhost:8723/api/bluetooth - bluetooth devices
//
// http://localhost:8723/api/system - system load, memory, temperatures
//
// http://localhost:8723/api/timers - GET running timers or POST {"duration": "10m"}
//
// http://localhost:8723/query/{query} - query any service, e.g. /query/sensors/status
//
// http://localhost:8723/events/feed - continuous live stream of events (line delimited)
//
// http://localhost:8723/ws - websocket pushing sensor, voice and alert events
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/oodog/binghome/config"
	"github.com/oodog/binghome/pubsub"
	"github.com/oodog/binghome/services"
)

const rpcTimeout = 500 * time.Millisecond

var started = time.Now()

// Service api
type Service struct {
	hub *WsHub
}

// ID of the service
func (self *Service) ID() string {
	return "api"
}

func errorResponse(w http.ResponseWriter, code int, err error) {
	w.Header().Add("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func jsonResponse(w http.ResponseWriter, obj interface{}) {
	w.Header().Add("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	err := enc.Encode(obj)
	if err != nil {
		errorResponse(w, 500, err)
	}
}

// rpcJson issues a query over the bus and returns the first json reply.
func rpcJson(query string) (interface{}, error) {
	ch := services.QueryChannel(query, rpcTimeout)
	for ev := range ch {
		if js, ok := ev.Fields["json"]; ok {
			return js, nil
		}
		return ev.StringField("message"), nil
	}
	return nil, fmt.Errorf("no reply to: %s", query)
}

func apiIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "text/html")
	fmt.Fprintf(w, "<html>binghome is listening</html>")
}

func apiHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]interface{}{
		"status": "ok",
		"uptime": int(time.Since(started).Seconds()),
	})
}

// latestEvent returns the recorded event for a device, nil if none.
func latestEvent(device string) *pubsub.Event {
	value, err := services.Stor.Get("binghome/state/" + device)
	if err != nil {
		return nil
	}
	return pubsub.Parse(value, "")
}

func apiSensorData(w http.ResponseWriter, r *http.Request) {
	ev := latestEvent("sensor.environment")
	if ev == nil {
		errorResponse(w, 404, fmt.Errorf("no sensor data yet"))
		return
	}
	jsonResponse(w, ev.Map())
}

func apiWeather(w http.ResponseWriter, r *http.Request) {
	ev := latestEvent("weather")
	if ev != nil {
		jsonResponse(w, ev.Map())
		return
	}
	reply, err := rpcJson("weather/weather")
	if err != nil {
		errorResponse(w, 502, err)
		return
	}
	jsonResponse(w, reply)
}

func apiNews(w http.ResponseWriter, r *http.Request) {
	reply, err := rpcJson("news/news")
	if err != nil {
		errorResponse(w, 502, err)
		return
	}
	jsonResponse(w, reply)
}

func apiVoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if r.Method == "POST" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorResponse(w, 400, err)
			return
		}
	} else {
		req.Text = r.URL.Query().Get("q")
	}
	if strings.TrimSpace(req.Text) == "" {
		errorResponse(w, 400, fmt.Errorf("text required"))
		return
	}

	// the voice service can be slow when the llm is involved
	ch := services.QueryChannel("voice/ask "+req.Text, 20*time.Second)
	for ev := range ch {
		jsonResponse(w, map[string]string{"message": ev.StringField("message")})
		return
	}
	errorResponse(w, 504, fmt.Errorf("voice service didn't reply"))
}

type deviceAndState struct {
	config.DeviceConf
	State interface{} `json:"state"`
}

func apiDevices(w http.ResponseWriter, r *http.Request) {
	ret := make(map[string]deviceAndState)
	for name, dev := range services.Config().Devices {
		var state interface{}
		if ev := latestEvent(name); ev != nil {
			state = ev.Map()
		}
		ret[name] = deviceAndState{dev, state}
	}
	jsonResponse(w, ret)
}

func apiDevicesControl(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	device := q.Get("id")
	command := q.Get("command")
	if device == "" || command == "" {
		errorResponse(w, 400, fmt.Errorf("id and command required"))
		return
	}
	if _, ok := services.Config().Devices[device]; !ok {
		errorResponse(w, 404, fmt.Errorf("unknown device: %s", device))
		return
	}
	ev := pubsub.NewCommand(device, command)
	ev.SetField("source", "api")
	services.Publisher.Emit(ev)
	jsonResponse(w, true)
}

func apiSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method == "POST" {
		var values map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
			errorResponse(w, 400, err)
			return
		}
		if err := services.Settings.Update(values); err != nil {
			errorResponse(w, 500, err)
			return
		}
		// let other services pick up the change
		services.Publisher.Emit(pubsub.NewEvent("config", pubsub.Fields{"source": "api"}))
	}
	jsonResponse(w, services.Settings.Snapshot())
}

func apiWifiScan(w http.ResponseWriter, r *http.Request) {
	reply, err := rpcJson("wifi/scan")
	if err != nil {
		errorResponse(w, 502, err)
		return
	}
	jsonResponse(w, reply)
}

func apiWifiConnect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ssid     string `json:"ssid"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, 400, err)
		return
	}
	if req.Ssid == "" {
		errorResponse(w, 400, fmt.Errorf("ssid required"))
		return
	}
	query := "wifi/connect " + strings.TrimSpace(req.Ssid+" "+req.Password)
	// joining a network takes a while
	message, err := services.RPC(query, 30*time.Second)
	if err != nil {
		errorResponse(w, 504, err)
		return
	}
	jsonResponse(w, map[string]string{"message": message})
}

func apiBluetooth(w http.ResponseWriter, r *http.Request) {
	reply, err := rpcJson("bluetooth/devices")
	if err != nil {
		errorResponse(w, 502, err)
		return
	}
	jsonResponse(w, reply)
}

func apiSystem(w http.ResponseWriter, r *http.Request) {
	reply, err := rpcJson("sysmon/system")
	if err != nil {
		errorResponse(w, 502, err)
		return
	}
	jsonResponse(w, reply)
}

func apiTimers(w http.ResponseWriter, r *http.Request) {
	if r.Method == "POST" {
		var req struct {
			Duration string `json:"duration"`
			Message  string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorResponse(w, 400, err)
			return
		}
		query := "routines/timer " + strings.TrimSpace(req.Duration+" "+req.Message)
		message, err := services.RPC(query, rpcTimeout)
		if err != nil {
			errorResponse(w, 502, err)
			return
		}
		jsonResponse(w, map[string]string{"message": message})
		return
	}
	reply, err := rpcJson("routines/timers")
	if err != nil {
		errorResponse(w, 502, err)
		return
	}
	jsonResponse(w, reply)
}

func query(endpoint string, q string, w http.ResponseWriter) {
	w.Header().Add("Content-Type", "application/json; charset=utf-8")

	ch := services.QueryChannel(strings.TrimSpace(endpoint+" "+q), rpcTimeout)
	for ev := range ch {
		fmt.Fprintf(w, ev.String()+"\r\n")
		w.(http.Flusher).Flush()
	}
}

func apiQuery(w http.ResponseWriter, r *http.Request) {
	endpoint := r.URL.Path[len("/query/"):]
	q := r.URL.Query().Get("q")
	query(endpoint, q, w)
}

func apiEventsFeed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	w.Header().Add("Content-Type", "application/json; boundary=NL")

	var topics []pubsub.Topic
	if t := q.Get("topics"); t != "" {
		for _, topic := range strings.Split(t, ",") {
			topics = append(topics, pubsub.Exact(topic))
		}
	} else {
		topics = []pubsub.Topic{pubsub.All()}
	}
	ch := services.Subscriber.Subscribe(topics...)
	defer services.Subscriber.Close(ch)

	for ev := range ch {
		encoder := json.NewEncoder(w)
		if err := encoder.Encode(ev.Map()); err != nil {
			break
		}
		w.Write([]byte("\r\n")) // separator
		w.(http.Flusher).Flush()
	}
}

func (self *Service) router() *mux.Router {
	router := mux.NewRouter()
	router.Path("/").HandlerFunc(apiIndex)
	router.Path("/api/health").HandlerFunc(apiHealth)
	router.Path("/api/sensor_data").HandlerFunc(apiSensorData)
	router.Path("/api/weather").HandlerFunc(apiWeather)
	router.Path("/api/news").HandlerFunc(apiNews)
	router.Path("/api/voice").HandlerFunc(apiVoice)
	router.Path("/api/devices").HandlerFunc(apiDevices)
	router.Path("/api/devices/control").HandlerFunc(apiDevicesControl)
	router.Path("/api/settings").HandlerFunc(apiSettings)
	router.Path("/api/wifi/scan").HandlerFunc(apiWifiScan)
	router.Path("/api/wifi/connect").Methods("POST").HandlerFunc(apiWifiConnect)
	router.Path("/api/bluetooth").HandlerFunc(apiBluetooth)
	router.Path("/api/system").HandlerFunc(apiSystem)
	router.Path("/api/timers").HandlerFunc(apiTimers)
	router.PathPrefix("/query/").HandlerFunc(apiQuery)
	router.Path("/events/feed").HandlerFunc(apiEventsFeed)
	router.Path("/ws").HandlerFunc(self.hub.serveWs)
	return router
}

type loggingHandler struct {
	Handler http.Handler
}

func (h loggingHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	log.Printf("%s %s\n", req.Method, req.RequestURI)
	h.Handler.ServeHTTP(w, req)
}

func (self *Service) httpEndpoint() {
	var handler http.Handler = self.router()
	handler = loggingHandler{Handler: handler}
	// the dashboard frontend is served from a different origin in dev
	handler = cors.New(cors.Options{
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(handler)

	addr := services.Config().Endpoints.Api
	if addr == "" {
		addr = ":8723"
	}
	log.Println("Listening on " + addr)
	err := http.ListenAndServe(addr, handler)
	if err != nil {
		log.Fatalln(err)
	}
}

// recordEvents keeps the last event per device in the store, so api
// reads don't need a live round-trip to every service.
func recordEvents() {
	for ev := range services.Subscriber.Subscribe(pubsub.All()) {
		device := ev.Device()
		if device == "" && ev.Topic == "weather" {
			device = "weather"
		}
		if device != "" {
			key := "binghome/state/" + device
			services.Stor.Set(key, ev.String())
		}
	}
}

// Run the service
func (self *Service) Run() error {
	self.hub = NewWsHub()
	go self.hub.Run()
	go recordEvents()
	self.httpEndpoint()
	return nil
}
