package news

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

const bingNewsURL = "https://api.bing.microsoft.com/v7.0/news"

// Headline is a single news item.
type Headline struct {
	Title     string `json:"title"`
	Url       string `json:"url"`
	Summary   string `json:"summary"`
	Provider  string `json:"provider"`
	Published string `json:"published"`
}

// Client fetches headlines from the Bing News API.
type Client struct {
	baseURL  string
	apiKey   string
	market   string
	category string
	count    int
	client   *http.Client
}

func NewClient(apiKey, market, category string, count int) *Client {
	if market == "" {
		market = "en-US"
	}
	if count <= 0 {
		count = 6
	}
	return &Client{
		baseURL:  bingNewsURL,
		apiKey:   apiKey,
		market:   market,
		category: category,
		count:    count,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type bingResponse struct {
	Value []struct {
		Name        string `json:"name"`
		Url         string `json:"url"`
		Description string `json:"description"`
		Provider    []struct {
			Name string `json:"name"`
		} `json:"provider"`
		DatePublished string `json:"datePublished"`
	} `json:"value"`
}

// Headlines fetches the top headlines.
func (self *Client) Headlines() ([]Headline, error) {
	params := url.Values{}
	params.Set("mkt", self.market)
	params.Set("count", fmt.Sprint(self.count))
	if self.category != "" {
		params.Set("category", self.category)
	}

	req, err := http.NewRequest("GET", self.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", self.apiKey)
	resp, err := self.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetching news")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news api returned %s", resp.Status)
	}

	var data bingResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, errors.Wrap(err, "decoding news")
	}

	headlines := make([]Headline, 0, len(data.Value))
	for _, item := range data.Value {
		headline := Headline{
			Title:     item.Name,
			Url:       item.Url,
			Summary:   item.Description,
			Published: item.DatePublished,
		}
		if len(item.Provider) > 0 {
			headline.Provider = item.Provider[0].Name
		}
		headlines = append(headlines, headline)
	}
	return headlines, nil
}
