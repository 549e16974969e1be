package modbrowser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vslauncher/launcher/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{
		BaseURL:   server.URL + "/",
		PageSize:  3,
		CacheSize: 4,
		CacheTTL:  time.Minute,
		Timeout:   5 * time.Second,
	})
	return client, &calls
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{})
	assert.Equal(t, DefaultBaseURL, c.config.BaseURL)
	assert.Equal(t, DefaultPageSize, c.PageSize())
	assert.Equal(t, DefaultCacheSize, c.config.CacheSize)

	c = NewClient(Config{PageSize: 10000})
	assert.Equal(t, MaxPageSize, c.PageSize())
}

func TestFetchPage_Success(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mods", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "3", r.URL.Query().Get("pageSize"))
		assert.Equal(t, "latest", r.URL.Query().Get("sort"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"statuscode": "200",
			"totalPages": 7,
			"mods": [
				{"modid": 11, "name": "Primitive Survival", "author": "Spear", "downloads": 1000, "follows": 50, "comments": 4},
				{"id": 12, "displayname": "Carry On", "authorname": "copygirl", "downloadcount": 900, "followercount": 30, "commentcount": 2},
				{"modid": 13, "modname": "Expanded Foods", "followcount": 7}
			]
		}`))
	})

	page, err := client.FetchPage(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.PageSize)
	assert.Equal(t, 7, page.TotalPages)
	assert.False(t, page.CacheHit)

	assert.Equal(t, []domain.ModInfo{
		{ID: 11, Name: "Primitive Survival", Author: "Spear", Downloads: 1000, Follows: 50, Comments: 4},
		{ID: 12, Name: "Carry On", Author: "copygirl", Downloads: 900, Follows: 30, Comments: 2},
		{ID: 13, Name: "Expanded Foods", Follows: 7},
	}, page.Mods)
}

func TestFetchPage_LowercaseTotalPagesAndMissingTotal(t *testing.T) {
	body := `{"totalpages": 4, "mods": []}`
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	page, err := client.FetchPage(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 4, page.TotalPages)
	assert.Empty(t, page.Mods)

	body = `{"mods": []}`
	page, err = client.FetchPage(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalPages)
}

func TestFetchPage_TruncatesAndSkipsEntriesWithoutID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"mods": [
			{"name": "no id"},
			{"modid": 1}, {"modid": 2}, {"modid": 3}, {"modid": 4}
		]}`))
	})

	page, err := client.FetchPage(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, page.Mods, 3)
	assert.Equal(t, int64(1), page.Mods[0].ID)
	assert.Equal(t, int64(3), page.Mods[2].ID)
}

func TestFetchPage_Cache(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalPages": 2, "mods": [{"modid": 1}]}`))
	})
	ctx := context.Background()

	first, err := client.FetchPage(ctx, 1)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := client.FetchPage(ctx, 1)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Mods, second.Mods)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))

	_, err = client.FetchPage(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))

	client.Invalidate()
	_, err = client.FetchPage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))

	stats := client.CacheStats()
	assert.Equal(t, 1, stats.Size)
}

func TestFetchPage_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		errCode string
	}{
		{"http error", http.StatusInternalServerError, `oops`, domain.ErrAPI},
		{"invalid json", http.StatusOK, `{not json`, domain.ErrAPI},
		{"bad statuscode", http.StatusOK, `{"statuscode": "500", "mods": []}`, domain.ErrAPI},
		{"missing mods", http.StatusOK, `{"statuscode": 200}`, domain.ErrAPI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.FetchPage(context.Background(), 1)
			require.Error(t, err)
			assert.True(t, domain.HasCode(err, tt.errCode), "got %v", err)
			assert.Zero(t, client.CacheStats().Size, "failures are not cached")
		})
	}
}

func TestFetchPage_InvalidPage(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.FetchPage(context.Background(), 0)
	assert.True(t, domain.HasCode(err, domain.ErrInvalidInput))
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestFetchPage_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(Config{BaseURL: url, Timeout: time.Second})
	_, err := client.FetchPage(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrNetwork))
}
