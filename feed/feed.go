// Package feed assembles one user's feed: seven-source candidate collection,
// per-item trust scoring, ratio-interleaved ranking and wire formatting. All
// work happens within the scope of one inbound request; the only persistent
// state the pipeline touches is the data store it reads from.
package feed

import (
	"time"

	"github.com/pkg/errors"
)

// GeneratorConfig carries the ranking tunables. The zero value is usable.
type GeneratorConfig struct {
	PrimaryRatio float64
	MaxItems     int
}

func (c *GeneratorConfig) applyDefaults() {
	if c.PrimaryRatio == 0 {
		c.PrimaryRatio = DefaultPrimaryRatio
	}
	if c.MaxItems == 0 {
		c.MaxItems = DefaultMaxItems
	}
}

// Generator runs the whole pipeline for one feed request.
type Generator struct {
	collector *Collector
	scorer    Scorer
	formatter *Formatter
	cfg       GeneratorConfig
}

func NewGenerator(collector *Collector, formatter *Formatter, cfg GeneratorConfig) *Generator {
	cfg.applyDefaults()
	return &Generator{
		collector: collector,
		scorer:    Scorer{},
		formatter: formatter,
		cfg:       cfg,
	}
}

// FeedResponse is the JSON body of the feed read endpoint.
type FeedResponse struct {
	Feed     []FormattedItem `json:"feed"`
	Metadata FeedMetadata    `json:"metadata"`
}

type FeedMetadata struct {
	TotalItems  int       `json:"total_items"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Generate builds the feed for one user. Individual candidate sources
// degrade gracefully inside the collector; a failure here means the social
// graph itself could not be read and the request fails as a whole.
func (g *Generator) Generate(userID string) (*FeedResponse, error) {
	candidates, err := g.collector.Collect(userID)
	if err != nil {
		return nil, errors.Wrap(err, "feed generation failed")
	}

	scored := make([]ScoredItem, 0, len(candidates))
	for i := range candidates {
		scored = append(scored, ScoredItem{
			Item:  candidates[i],
			Trust: g.scorer.Score(&candidates[i]),
		})
	}

	ranked := Rank(scored, g.cfg.PrimaryRatio, g.cfg.MaxItems)

	formatted, err := g.formatter.Format(userID, ranked)
	if err != nil {
		return nil, errors.Wrap(err, "feed formatting failed")
	}

	return &FeedResponse{
		Feed: formatted,
		Metadata: FeedMetadata{
			TotalItems:  len(formatted),
			GeneratedAt: time.Now().UTC(),
		},
	}, nil
}
