package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"restaurant-floor-backend/config"
	"restaurant-floor-backend/internal/store"
)

type mockMenu struct {
	calls int32
	items []store.CatalogItem
	err   error
}

func (m *mockMenu) UpsertMenu(_ context.Context, items []store.CatalogItem) error {
	atomic.AddInt32(&m.calls, 1)
	m.items = items
	return m.err
}

func catalogServer(t *testing.T, pages [][]store.CatalogItem, total int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))

		resp := apiResponse{}
		resp.Data.Page = page
		resp.Data.Total = total
		if page >= 1 && page <= len(pages) {
			resp.Data.Items = pages[page-1]
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(url string) config.CatalogConfig {
	return config.CatalogConfig{
		Enabled:  true,
		URL:      url,
		Headers:  map[string]string{"X-Api-Key": "secret"},
		PageSize: 2,
		Interval: time.Hour,
	}
}

func TestSyncOnce_FetchesAllPages(t *testing.T) {
	pages := [][]store.CatalogItem{
		{
			{ID: 1, Name: "Burger", Price: decimal.NewFromInt(250), Destination: "kitchen", Available: true},
			{ID: 2, Name: "Beer", Price: decimal.NewFromInt(50), Destination: "BAR", Available: true},
		},
		{
			{ID: 3, Name: "Mystery", Price: decimal.NewFromInt(10), Destination: "GARDEN", Available: true},
		},
	}
	srv := catalogServer(t, pages, 3)
	menu := &mockMenu{}

	err := NewPoller(testConfig(srv.URL), menu, zap.NewNop()).SyncOnce(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 1, menu.calls)
	require.Len(t, menu.items, 2, "item with an unknown destination is skipped")
	assert.Equal(t, "KITCHEN", string(menu.items[0].Destination))
	assert.Equal(t, "Beer", menu.items[1].Name)
}

func TestSyncOnce_UpstreamErrorWritesNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	menu := &mockMenu{}

	err := NewPoller(testConfig(srv.URL), menu, zap.NewNop()).SyncOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-200")
	assert.EqualValues(t, 0, menu.calls)
}

func TestSyncOnce_NonZeroCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":7,"data":{}}`))
	}))
	defer srv.Close()
	menu := &mockMenu{}

	err := NewPoller(testConfig(srv.URL), menu, zap.NewNop()).SyncOnce(context.Background())
	require.Error(t, err)
	assert.EqualValues(t, 0, menu.calls)
}

func TestRun_DisabledReturnsImmediately(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:0")
	cfg.Enabled = false
	menu := &mockMenu{}

	done := make(chan struct{})
	go func() {
		NewPoller(cfg, menu, zap.NewNop()).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return for a disabled poller")
	}
	assert.EqualValues(t, 0, menu.calls)
}

func TestRun_SyncsUntilCancelled(t *testing.T) {
	srv := catalogServer(t, [][]store.CatalogItem{
		{{ID: 1, Name: "Burger", Price: decimal.NewFromInt(250), Destination: "KITCHEN", Available: true}},
	}, 1)
	menu := &mockMenu{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		NewPoller(testConfig(srv.URL), menu, zap.NewNop()).Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&menu.calls) == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	<-done
}
