package mqtt

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"

	"github.com/oodog/binghome/pubsub"
)

// All bus traffic lives under this topic namespace on the broker.
const Namespace = "binghome/"

type Broker struct {
	broker     string
	client     MQTT.Client
	subscriber *Subscriber
}

func NewBroker(url string, name string) *Broker {
	self := &Broker{broker: url}

	hostname, _ := os.Hostname()
	clientID := fmt.Sprintf("binghome/%s/%s-%d-%d", name, hostname, os.Getpid(), rand.Int31())
	opts := MQTT.NewClientOptions()
	opts.AddBroker(url)
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetDefaultPublishHandler(func(client MQTT.Client, msg MQTT.Message) {
		if self.subscriber != nil {
			self.subscriber.publishHandler(client, msg)
		}
	})
	opts.SetOnConnectHandler(func(client MQTT.Client) {
		if self.subscriber != nil {
			self.subscriber.connectHandler(client)
		}
	})

	client := MQTT.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln("Couldn't connect to mqtt:", token.Error())
	}
	self.client = client
	return self
}

func (self *Broker) Id() string {
	return "mqtt: " + self.broker
}

func (self *Broker) Subscriber() pubsub.Subscriber {
	if self.subscriber == nil {
		self.subscriber = NewSubscriber(self)
	}
	return self.subscriber
}

func (self *Broker) Publisher() pubsub.Publisher {
	return &Publisher{broker: self.broker, client: self.client}
}
