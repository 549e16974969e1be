// Package modbrowser lists mods from the remote mod repository page by page.
package modbrowser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vslauncher/launcher/internal/cache"
	"github.com/vslauncher/launcher/internal/domain"
)

const (
	// DefaultBaseURL is the Vintage Story mod database API
	DefaultBaseURL = "https://mods.vintagestory.at/api"
	// DefaultPageSize matches the page size the launcher UI requests
	DefaultPageSize = 96
	// MaxPageSize caps a single request
	MaxPageSize = 200
	// DefaultCacheSize is the number of pages kept in memory
	DefaultCacheSize = 32
	// DefaultCacheTTL is how long a cached page is served
	DefaultCacheTTL = 5 * time.Minute
	// DefaultTimeout bounds a page request
	DefaultTimeout = 30 * time.Second

	userAgent   = "vslauncher/1.0"
	maxPageBody = 10 * 1024 * 1024
)

// Config holds configuration for the mod browser client
type Config struct {
	BaseURL   string
	PageSize  int
	CacheSize int
	CacheTTL  time.Duration
	Timeout   time.Duration
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		PageSize:  DefaultPageSize,
		CacheSize: DefaultCacheSize,
		CacheTTL:  DefaultCacheTTL,
		Timeout:   DefaultTimeout,
	}
}

// Client fetches mod listings and keeps recently requested pages in an LRU cache
type Client struct {
	config     Config
	httpClient *http.Client
	pages      *cache.LRUCache[domain.ModPage]
}

// NewClient creates a mod browser client
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.PageSize <= 0 {
		config.PageSize = DefaultPageSize
	}
	if config.PageSize > MaxPageSize {
		config.PageSize = MaxPageSize
	}
	if config.CacheSize <= 0 {
		config.CacheSize = DefaultCacheSize
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		pages:      cache.NewLRUCache[domain.ModPage](config.CacheSize, config.CacheTTL),
	}
}

// PageSize returns the number of mods requested per page
func (c *Client) PageSize() int { return c.config.PageSize }

// pageResponse is the envelope returned by /mods
type pageResponse struct {
	StatusCode json.RawMessage `json:"statuscode"`
	TotalPages *int            `json:"totalPages"`
	Mods       *[]modRecord    `json:"mods"`
}

// modRecord accepts the field spellings used by different API revisions
type modRecord struct {
	ModID         *int64 `json:"modid"`
	ID            *int64 `json:"id"`
	Name          string `json:"name"`
	DisplayName   string `json:"displayname"`
	ModName       string `json:"modname"`
	Author        string `json:"author"`
	AuthorName    string `json:"authorname"`
	Downloads     *int64 `json:"downloads"`
	DownloadCount *int64 `json:"downloadcount"`
	Follows       *int64 `json:"follows"`
	FollowCount   *int64 `json:"followcount"`
	FollowerCount *int64 `json:"followercount"`
	Comments      *int64 `json:"comments"`
	CommentCount  *int64 `json:"commentcount"`
}

func (r modRecord) toModInfo() (domain.ModInfo, bool) {
	id := firstInt(r.ModID, r.ID)
	if id == nil {
		return domain.ModInfo{}, false
	}
	return domain.ModInfo{
		ID:        *id,
		Name:      firstString(r.Name, r.DisplayName, r.ModName),
		Author:    firstString(r.Author, r.AuthorName),
		Downloads: valueOrZero(firstInt(r.Downloads, r.DownloadCount)),
		Follows:   valueOrZero(firstInt(r.Follows, r.FollowCount, r.FollowerCount)),
		Comments:  valueOrZero(firstInt(r.Comments, r.CommentCount)),
	}, true
}

// FetchPage returns the 1-based page of mods sorted by latest activity.
// Pages are served from the cache while fresh.
func (c *Client) FetchPage(ctx context.Context, page int) (*domain.ModPage, error) {
	if page < 1 {
		return nil, domain.NewAppError(domain.ErrInvalidInput, "Page must be 1 or greater", 400,
			map[string]any{"page": page})
	}

	key := strconv.Itoa(page)
	if cached, ok := c.pages.Get(key); ok {
		cached.CacheHit = true
		return &cached, nil
	}

	result, err := c.fetchRemotePage(ctx, page)
	if err != nil {
		return nil, err
	}

	c.pages.Set(key, *result)
	return result, nil
}

// Invalidate drops all cached pages
func (c *Client) Invalidate() {
	c.pages.Clear()
}

// CacheStats returns page cache statistics
func (c *Client) CacheStats() domain.CacheStats {
	return c.pages.Stats()
}

// HealthCheck reports the state of the page cache
func (c *Client) HealthCheck(ctx context.Context) domain.HealthStatus {
	return c.pages.HealthCheck(ctx)
}

func (c *Client) fetchRemotePage(ctx context.Context, page int) (*domain.ModPage, error) {
	url := fmt.Sprintf("%s/mods?page=%d&pageSize=%d&sort=latest", c.config.BaseURL, page, c.config.PageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewAppErrorWithCause(domain.ErrNetwork, "Failed to reach mod repository", 502, err,
			map[string]any{"page": page})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewAppError(domain.ErrAPI, fmt.Sprintf("Mod repository returned HTTP %d", resp.StatusCode), 502,
			map[string]any{"page": page, "status": resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBody))
	if err != nil {
		return nil, domain.NewAppErrorWithCause(domain.ErrNetwork, "Failed to read mod listing", 502, err, nil)
	}

	var envelope pageResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, domain.NewAppErrorWithCause(domain.ErrAPI, "Mod listing is not valid JSON", 502, err, nil)
	}
	if !statusOK(envelope.StatusCode) {
		return nil, domain.NewAppError(domain.ErrAPI, fmt.Sprintf("Mod repository reported status %s", string(envelope.StatusCode)), 502, nil)
	}
	if envelope.Mods == nil {
		return nil, domain.NewAppError(domain.ErrAPI, "Mod listing has no mods array", 502, nil)
	}

	totalPages := 1
	if envelope.TotalPages != nil {
		totalPages = *envelope.TotalPages
	}

	mods := make([]domain.ModInfo, 0, len(*envelope.Mods))
	for _, record := range *envelope.Mods {
		info, ok := record.toModInfo()
		if !ok {
			log.Warn().Int("page", page).Msg("Skipping mod listing entry without id")
			continue
		}
		mods = append(mods, info)
		if len(mods) == c.config.PageSize {
			break
		}
	}

	log.Debug().Int("page", page).Int("count", len(mods)).Int("total_pages", totalPages).Msg("Fetched mod page")

	return &domain.ModPage{
		Page:       page,
		PageSize:   c.config.PageSize,
		TotalPages: totalPages,
		Mods:       mods,
	}, nil
}

// statusOK accepts a missing statuscode or "200" spelled as string or number
func statusOK(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return true
	}
	return strings.Trim(string(raw), `"`) == "200"
}

func firstInt(values ...*int64) *int64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func valueOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
