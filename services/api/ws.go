package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oodog/binghome/pubsub"
	"github.com/oodog/binghome/services"
)

// topics pushed out to dashboard websockets
var pushTopics = []pubsub.Topic{
	pubsub.Exact("sensor"),
	pubsub.Exact("weather"),
	pubsub.Exact("news"),
	pubsub.Exact("state"),
	pubsub.Exact("alert"),
	pubsub.Exact("voice_response"),
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the api is already open on the lan
	CheckOrigin: func(r *http.Request) bool { return true },
}

const writeTimeout = 10 * time.Second

// WsHub fans bus events out to connected dashboard websockets.
type WsHub struct {
	register   chan *wsClient
	unregister chan *wsClient
	clients    map[*wsClient]bool
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

func NewWsHub() *WsHub {
	return &WsHub{
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		clients:    map[*wsClient]bool{},
	}
}

// Run pumps bus events to every connected client. Slow clients get
// dropped rather than blocking the hub.
func (self *WsHub) Run() {
	events := services.Subscriber.Subscribe(pushTopics...)
	for {
		select {
		case client := <-self.register:
			self.clients[client] = true
		case client := <-self.unregister:
			if _, ok := self.clients[client]; ok {
				delete(self.clients, client)
				close(client.send)
			}
		case ev := <-events:
			data := ev.Bytes()
			for client := range self.clients {
				select {
				case client.send <- data:
				default:
					delete(self.clients, client)
					close(client.send)
				}
			}
		}
	}
}

func (self *WsHub) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Websocket upgrade failed:", err)
		return
	}
	client := &wsClient{conn: conn, send: make(chan []byte, 16)}
	self.register <- client
	go client.writePump()
	go client.readPump(self)
}

func (self *wsClient) writePump() {
	defer self.conn.Close()
	for data := range self.send {
		self.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := self.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	self.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump discards client messages, serving only to detect closes.
func (self *wsClient) readPump(hub *WsHub) {
	defer func() {
		hub.unregister <- self
		self.conn.Close()
	}()
	self.conn.SetReadLimit(512)
	for {
		if _, _, err := self.conn.ReadMessage(); err != nil {
			return
		}
	}
}
