package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cryptoscout/internal/domain/projects"
)

const defaultBaseURL = "https://api.llama.fi"

// DefiLlama discovers protocols recently listed on DeFi Llama.
type DefiLlama struct {
	BaseURL string
	Window  time.Duration // how far back "newly listed" reaches
	Client  *http.Client
	now     func() time.Time
}

func NewDefiLlama(withinDays int) *DefiLlama {
	if withinDays <= 0 {
		withinDays = 7
	}
	return &DefiLlama{
		BaseURL: defaultBaseURL,
		Window:  time.Duration(withinDays) * 24 * time.Hour,
		Client:  &http.Client{Timeout: 30 * time.Second},
		now:     time.Now,
	}
}

func (d *DefiLlama) Name() string { return "defillama" }

// protocol is the subset of the /protocols payload this service cares about.
type protocol struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	Symbol      string  `json:"symbol"`
	TVL         float64 `json:"tvl"`
	ListedAt    int64   `json:"listedAt"`
}

// Discover fetches the protocol list and keeps entries listed within the
// window. Protocols without a listedAt timestamp are skipped: their age is
// unknowable and almost always old.
func (d *DefiLlama) Discover(ctx context.Context) ([]projects.Project, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.BaseURL+"/protocols", nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch protocols: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("defillama status %d", resp.StatusCode)
	}

	var protocols []protocol
	if err := json.NewDecoder(resp.Body).Decode(&protocols); err != nil {
		return nil, fmt.Errorf("decode protocols: %w", err)
	}

	now := d.now()
	cutoff := now.Add(-d.Window)
	var out []projects.Project
	for _, p := range protocols {
		if p.ListedAt == 0 || time.Unix(p.ListedAt, 0).Before(cutoff) {
			continue
		}
		symbol := p.Symbol
		if symbol == "-" {
			symbol = ""
		}
		out = append(out, projects.Project{
			ID:           "defillama_" + p.Slug,
			Name:         p.Name,
			Category:     p.Category,
			Source:       d.Name(),
			Description:  p.Description,
			URL:          p.URL,
			TokenSymbol:  symbol,
			TVL:          p.TVL,
			Status:       projects.StatusNew,
			DiscoveredAt: now,
		})
	}
	return out, nil
}
