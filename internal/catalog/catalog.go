// Package catalog declares the strategies and periods served by the API.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"backtest-results-api/internal/domain"
)

// ErrInvalidCatalog is returned when a catalog fails validation.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Strategy is one backtested bot.
type Strategy struct {
	ID          string             `yaml:"id" json:"id"`
	Name        string             `yaml:"name" json:"name"`
	Description string             `yaml:"description,omitempty" json:"description,omitempty"`
	Directions  []domain.Direction `yaml:"directions" json:"directions"`
	// Market is the strategy whose bars value buy-and-hold and carry the
	// initial balance. Defaults to ID.
	Market string `yaml:"market,omitempty" json:"market"`
}

// CloseTypes returns the close signal of every direction, in direction order.
func (s Strategy) CloseTypes() []domain.TradeType {
	out := make([]domain.TradeType, 0, len(s.Directions))
	for _, d := range s.Directions {
		out = append(out, d.Close)
	}
	return out
}

// Period is one historical sub-range every strategy was evaluated on.
type Period struct {
	ID          string `yaml:"id" json:"id"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Catalog lists the strategies and periods, in presentation order.
type Catalog struct {
	Strategies []Strategy `yaml:"strategies" json:"strategies"`
	Periods    []Period   `yaml:"periods" json:"periods"`
}

// Default returns the built-in catalog of four bots over four periods.
func Default() *Catalog {
	twoWay := []domain.Direction{domain.DirectionLongClose, domain.DirectionShortCover}
	return &Catalog{
		Strategies: []Strategy{
			{ID: "tb1", Name: "buy", Description: "long-only buy/sell bot",
				Directions: []domain.Direction{domain.DirectionBuySell}, Market: "tb1"},
			{ID: "tb2", Name: "trends", Description: "trend following, long and short",
				Directions: twoWay, Market: "tb1"},
			{ID: "tb3", Name: "emarsi", Description: "EMA + RSI, long and short",
				Directions: twoWay, Market: "tb1"},
			{ID: "tb4", Name: "emarsiobv", Description: "EMA + RSI + OBV, long and short",
				Directions: twoWay, Market: "tb1"},
		},
		Periods: []Period{
			{ID: "asc", Description: "ascending market"},
			{ID: "dsc", Description: "descending market"},
			{ID: "stg", Description: "stagnant market"},
			{ID: "com", Description: "combined range"},
		},
	}
}

// Load reads and validates a YAML catalog.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog. Unknown fields are rejected.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	for i := range c.Strategies {
		if c.Strategies[i].Market == "" {
			c.Strategies[i].Market = c.Strategies[i].ID
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks ids, directions and market references.
func (c *Catalog) Validate() error {
	if len(c.Strategies) == 0 {
		return fmt.Errorf("no strategies: %w", ErrInvalidCatalog)
	}
	if len(c.Periods) == 0 {
		return fmt.Errorf("no periods: %w", ErrInvalidCatalog)
	}

	strategies := make(map[string]struct{}, len(c.Strategies))
	for _, s := range c.Strategies {
		if s.ID == "" {
			return fmt.Errorf("strategy with empty id: %w", ErrInvalidCatalog)
		}
		if _, dup := strategies[s.ID]; dup {
			return fmt.Errorf("duplicate strategy %q: %w", s.ID, ErrInvalidCatalog)
		}
		strategies[s.ID] = struct{}{}

		if len(s.Directions) == 0 {
			return fmt.Errorf("strategy %q has no directions: %w", s.ID, ErrInvalidCatalog)
		}
		for _, d := range s.Directions {
			if !d.Open.Valid() || !d.Close.Valid() || d.Open == domain.TradeNoSignal || d.Close == domain.TradeNoSignal {
				return fmt.Errorf("strategy %q direction %s/%s: %w", s.ID, d.Open, d.Close, ErrInvalidCatalog)
			}
			if d.Open == d.Close {
				return fmt.Errorf("strategy %q opens and closes on %s: %w", s.ID, d.Open, ErrInvalidCatalog)
			}
		}
	}

	for _, s := range c.Strategies {
		if _, ok := strategies[s.Market]; !ok {
			return fmt.Errorf("strategy %q uses unknown market %q: %w", s.ID, s.Market, ErrInvalidCatalog)
		}
	}

	periods := make(map[string]struct{}, len(c.Periods))
	for _, p := range c.Periods {
		if p.ID == "" {
			return fmt.Errorf("period with empty id: %w", ErrInvalidCatalog)
		}
		if _, dup := periods[p.ID]; dup {
			return fmt.Errorf("duplicate period %q: %w", p.ID, ErrInvalidCatalog)
		}
		periods[p.ID] = struct{}{}
	}

	return nil
}

// Strategy looks up a strategy by id.
func (c *Catalog) Strategy(id string) (Strategy, bool) {
	for _, s := range c.Strategies {
		if s.ID == id {
			return s, true
		}
	}
	return Strategy{}, false
}

// HasPeriod reports whether id is a known period.
func (c *Catalog) HasPeriod(id string) bool {
	for _, p := range c.Periods {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Series lists every strategy × period combination in catalog order.
func (c *Catalog) Series() []domain.SeriesKey {
	out := make([]domain.SeriesKey, 0, len(c.Strategies)*len(c.Periods))
	for _, s := range c.Strategies {
		for _, p := range c.Periods {
			out = append(out, domain.SeriesKey{StrategyID: s.ID, PeriodID: p.ID})
		}
	}
	return out
}
