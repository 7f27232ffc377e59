// Service polling news headlines for the dashboard ticker.
//
// Without an api key (or when the api is down) the dashboard still
// needs something to scroll, so a canned set of headlines stands in.
package news

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/oodog/binghome/pubsub"
	"github.com/oodog/binghome/services"
)

const defaultInterval = 5 * time.Minute

var fallbackHeadlines = []Headline{
	{Title: "Welcome to your home dashboard", Provider: "binghome"},
	{Title: "Configure a news api key to see live headlines here", Provider: "binghome"},
	{Title: "Try saying: turn on the living room light", Provider: "binghome"},
}

// Service news
type Service struct {
	client *Client
	mutex  sync.Mutex
	latest []Headline
}

// ID of the service
func (self *Service) ID() string {
	return "news"
}

func (self *Service) Init() error {
	conf := services.Config().News
	if conf.ApiKey != "" {
		self.client = NewClient(conf.ApiKey, conf.Market, conf.Category, conf.Count)
	} else {
		log.Println("No news api key, using canned headlines")
	}
	self.latest = fallbackHeadlines
	return nil
}

// Latest returns the most recent headlines, falling back to the canned
// set when no live fetch has succeeded.
func (self *Service) Latest() []Headline {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	return self.latest
}

func (self *Service) poll() {
	headlines, err := self.client.Headlines()
	if err != nil {
		log.Println("Error fetching news:", err)
		return
	}
	if len(headlines) == 0 {
		return
	}
	self.mutex.Lock()
	self.latest = headlines
	self.mutex.Unlock()

	titles := make([]string, len(headlines))
	for i, headline := range headlines {
		titles[i] = headline.Title
	}
	fields := pubsub.Fields{
		"source":    "news",
		"headlines": titles,
	}
	ev := pubsub.NewEvent("news", fields)
	ev.SetRetained(true)
	services.Publisher.Emit(ev)
}

func (self *Service) queryNews(q services.Question) services.Answer {
	headlines := self.Latest()
	lines := make([]string, len(headlines))
	for i, headline := range headlines {
		lines[i] = fmt.Sprintf("%s (%s)", headline.Title, headline.Provider)
	}
	return services.Answer{Text: strings.Join(lines, "\n"), Json: headlines}
}

func (self *Service) QueryHandlers() services.QueryHandlers {
	return services.QueryHandlers{
		"news": self.queryNews,
		"help": services.StaticHandler("news: latest headlines\n"),
	}
}

// Run the service
func (self *Service) Run() error {
	if self.client == nil {
		// nothing to poll, serve the canned headlines over queries
		select {}
	}
	interval := services.Config().News.Interval.Or(defaultInterval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for ; true; <-ticker.C {
		self.poll()
	}
	return nil
}
