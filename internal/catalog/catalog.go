package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"restaurant-floor-backend/config"
	"restaurant-floor-backend/internal/model"
	"restaurant-floor-backend/internal/store"
)

// MenuWriter persists catalog snapshots.
type MenuWriter interface {
	UpsertMenu(ctx context.Context, items []store.CatalogItem) error
}

// Poller mirrors the external catalog service into the local menu tables.
type Poller struct {
	cfg    config.CatalogConfig
	menu   MenuWriter
	client *http.Client
	log    *zap.Logger
}

// NewPoller creates a catalog poller.
func NewPoller(cfg config.CatalogConfig, menu MenuWriter, log *zap.Logger) *Poller {
	return &Poller{
		cfg:  cfg,
		menu: menu,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.Named("catalog"),
	}
}

// Run syncs immediately and then on every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	if !p.cfg.Enabled {
		p.log.Info("catalog sync is disabled, not starting")
		return
	}
	p.log.Info("starting catalog sync", zap.String("url", p.cfg.URL), zap.Duration("interval", p.cfg.Interval))

	if err := p.SyncOnce(ctx); err != nil {
		p.log.Warn("catalog sync failed", zap.Error(err))
	}

	timer := time.NewTimer(p.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("catalog sync shutting down")
			return
		case <-timer.C:
			if err := p.SyncOnce(ctx); err != nil {
				p.log.Warn("catalog sync failed", zap.Error(err))
			}
			timer.Reset(p.cfg.Interval)
		}
	}
}

// SyncOnce fetches every page of the catalog and upserts what it got.
// A snapshot is only written when every page was fetched.
func (p *Poller) SyncOnce(ctx context.Context) error {
	var all []store.CatalogItem
	total := 1
	pageSize := p.cfg.PageSize
	for page := 1; (page-1)*pageSize < total; page++ {
		resp, err := p.fetchPage(ctx, page)
		if err != nil {
			return fmt.Errorf("fetch page %d: %w", page, err)
		}
		if resp.Data.Total == 0 || len(resp.Data.Items) == 0 {
			break
		}
		total = resp.Data.Total
		all = append(all, resp.Data.Items...)
		p.log.Debug("fetched catalog page", zap.Int("page", page), zap.Int("items", len(all)), zap.Int("total", total))
	}

	items := make([]store.CatalogItem, 0, len(all))
	for _, it := range all {
		it.Destination = model.Destination(strings.ToUpper(string(it.Destination)))
		if !it.Destination.Valid() || it.Price.IsNegative() {
			p.log.Warn("skipping malformed catalog item", zap.Int64("id", it.ID), zap.String("destination", string(it.Destination)))
			continue
		}
		items = append(items, it)
	}

	if err := p.menu.UpsertMenu(ctx, items); err != nil {
		return err
	}
	p.log.Info("catalog sync finished", zap.Int("items", len(items)))
	return nil
}

func (p *Poller) fetchPage(ctx context.Context, page int) (*apiResponse, error) {
	u, err := url.Parse(p.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog url: %w", err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(p.cfg.PageSize))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range p.cfg.Headers {
		req.Header.Set(key, value)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var out apiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if out.Code != 0 {
		return nil, fmt.Errorf("catalog service returned code %d", out.Code)
	}
	return &out, nil
}
