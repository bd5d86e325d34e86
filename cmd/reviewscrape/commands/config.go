package commands

import (
	"time"

	"reviewscrape/lib/configutil"
	"reviewscrape/lib/fetch"
	"reviewscrape/lib/scrapers/reviews"
)

const configName = "reviewscrape.json5"

// Config is read from reviewscrape.json5 (and reviewscrape.local.json5),
// command line flags take precedence over it.
type Config struct {
	Fetch       fetch.Options `json:"fetch"`
	PageDelayMs int           `json:"page_delay_ms"`
	MaxPages    int           `json:"max_pages"`
	// archive every run into this sqlite database
	Db string `json:"db"`
}

func defaultConfig() Config {
	return Config{
		Fetch:       fetch.DefaultOptions(),
		PageDelayMs: int(reviews.DefaultPageDelay / time.Millisecond),
	}
}

func readConfig() (Config, error) {
	return configutil.ReadWithDefaults(configName, defaultConfig())
}

func (c Config) scraperOptions() reviews.Options {
	return reviews.Options{
		PageDelay: time.Duration(c.PageDelayMs) * time.Millisecond,
		MaxPages:  c.MaxPages,
	}
}
