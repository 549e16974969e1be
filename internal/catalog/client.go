// Package catalog fetches the list of downloadable Vintage Story releases from
// the mod database API and provides version-aware sorting and filtering.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vslauncher/launcher/internal/domain"
)

const (
	// DefaultBaseURL is the Vintage Story mod database API
	DefaultBaseURL = "https://mods.vintagestory.at/api"
	// DefaultCDNURL hosts the client archives
	DefaultCDNURL = "https://cdn.vintagestory.at/gamefiles"
	// DefaultPlatform selects the client archive flavour
	DefaultPlatform = "linux-x64"
	// DefaultTimeout bounds a catalog request
	DefaultTimeout = 30 * time.Second
	// DefaultHeaderTimeout bounds the wait for archive response headers
	DefaultHeaderTimeout = 30 * time.Second

	userAgent = "vslauncher/1.0"

	// Limit catalog responses to 10MB to prevent OOM
	maxCatalogSize = 10 * 1024 * 1024
)

// ClientConfig holds configuration for the catalog client
type ClientConfig struct {
	// BaseURL is the API root, without trailing slash
	BaseURL string
	// CDNURL is the root used to derive archive URLs the API does not provide
	CDNURL string
	// Platform is the archive flavour, e.g. "linux-x64"
	Platform string
	// Timeout bounds a whole catalog request
	Timeout time.Duration
	// HeaderTimeout bounds the wait for archive response headers; the body
	// stream itself has no deadline
	HeaderTimeout time.Duration
}

// DefaultConfig returns a ClientConfig with default values
func DefaultConfig() ClientConfig {
	return ClientConfig{
		BaseURL:       DefaultBaseURL,
		CDNURL:        DefaultCDNURL,
		Platform:      DefaultPlatform,
		Timeout:       DefaultTimeout,
		HeaderTimeout: DefaultHeaderTimeout,
	}
}

// Client talks to the remote version catalog and the archive CDN
type Client struct {
	config         ClientConfig
	httpClient     *http.Client
	downloadClient *http.Client
}

// NewClient creates a new catalog client with the given configuration
func NewClient(config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.CDNURL == "" {
		config.CDNURL = DefaultCDNURL
	}
	if config.Platform == "" {
		config.Platform = DefaultPlatform
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.HeaderTimeout == 0 {
		config.HeaderTimeout = DefaultHeaderTimeout
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	config.CDNURL = strings.TrimRight(config.CDNURL, "/")

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = config.HeaderTimeout

	return &Client{
		config:         config,
		httpClient:     &http.Client{Timeout: config.Timeout},
		downloadClient: &http.Client{Transport: transport},
	}
}

// catalogResponse is the envelope returned by /gameversions
type catalogResponse struct {
	StatusCode   json.RawMessage  `json:"statuscode"`
	GameVersions *[]catalogRecord `json:"gameversions"`
}

// catalogRecord is one entry of the gameversions array. Unknown fields are ignored.
type catalogRecord struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	ReleaseDate string `json:"releasedate"`
}

// FetchCatalog retrieves the list of available game versions.
// Records whose name cannot be parsed are skipped; duplicates keep the first occurrence.
func (c *Client) FetchCatalog(ctx context.Context) ([]domain.GameVersion, error) {
	body, err := c.get(ctx, c.config.BaseURL+"/gameversions")
	if err != nil {
		return nil, err
	}

	var resp catalogResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apiError("Catalog response is not valid JSON", err)
	}
	if !statusOK(resp.StatusCode) {
		return nil, apiError(fmt.Sprintf("Catalog reported status %s", string(resp.StatusCode)), nil)
	}
	if resp.GameVersions == nil {
		return nil, apiError("Catalog response has no gameversions array", nil)
	}

	seen := make(map[string]struct{}, len(*resp.GameVersions))
	versions := make([]domain.GameVersion, 0, len(*resp.GameVersions))
	for _, record := range *resp.GameVersions {
		v, err := c.toGameVersion(record)
		if err != nil {
			log.Warn().Err(err).Str("name", record.Name).Msg("Skipping unparseable catalog entry")
			continue
		}
		if _, dup := seen[v.ID]; dup {
			continue
		}
		seen[v.ID] = struct{}{}
		versions = append(versions, v)
	}

	log.Debug().Int("count", len(versions)).Msg("Fetched version catalog")
	return versions, nil
}

func (c *Client) toGameVersion(record catalogRecord) (domain.GameVersion, error) {
	id, semver, err := ParseVersionName(record.Name)
	if err != nil {
		return domain.GameVersion{}, err
	}

	channel := domain.ChannelForPre(semver.Pre)
	if ch, ok := channelFromType(record.Type); ok {
		channel = ch
	}

	url := strings.TrimSpace(record.URL)
	if url == "" {
		url = c.ArchiveURL(id, channel)
	}

	return domain.GameVersion{
		ID:          id,
		SemVer:      semver,
		Channel:     channel,
		DownloadURL: url,
		ReleasedAt:  parseReleaseDate(record.ReleaseDate),
	}, nil
}

// ArchiveURL derives the CDN location of a client archive
func (c *Client) ArchiveURL(id string, channel domain.Channel) string {
	folder := "stable"
	if channel != domain.ChannelStable {
		folder = "unstable"
	}
	return fmt.Sprintf("%s/%s/vs_client_%s_%s.tar.gz", c.config.CDNURL, folder, c.config.Platform, id)
}

// OpenDownload starts streaming an archive. The returned size is -1 when the
// server does not announce a Content-Length.
func (c *Client) OpenDownload(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, domain.NewAppErrorWithCause(domain.ErrDownload, "Invalid download URL", 400, err, map[string]any{"url": url})
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.downloadClient.Do(req)
	if err != nil {
		return nil, 0, domain.NewAppErrorWithCause(domain.ErrDownload, "Failed to start download", 502, err, map[string]any{"url": url})
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, domain.NewAppError(domain.ErrDownload, fmt.Sprintf("Download failed: HTTP %d", resp.StatusCode), 502,
			map[string]any{"url": url, "status": resp.StatusCode})
	}

	return resp.Body, resp.ContentLength, nil
}

// IsAvailable checks if the catalog API is reachable
func (c *Client) IsAvailable(ctx context.Context) bool {
	shortCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.FetchCatalog(shortCtx)
	return err == nil
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string { return c.config.BaseURL }

// get performs a single GET against the API and returns the body of a 200 response
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewAppError(domain.ErrAPI, fmt.Sprintf("Remote API returned HTTP %d", resp.StatusCode), 502,
			map[string]any{"url": url, "status": resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogSize))
	if err != nil {
		return nil, networkError(err)
	}
	return body, nil
}

// statusOK accepts a missing statuscode or "200" spelled as string or number
func statusOK(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return true
	}
	return strings.Trim(string(raw), `"`) == "200"
}

func parseReleaseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func networkError(err error) *domain.AppError {
	details := map[string]any{}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		details["timeout"] = true
	}
	return domain.NewAppErrorWithCause(domain.ErrNetwork, "Failed to reach remote API", 502, err, details)
}

func apiError(message string, cause error) *domain.AppError {
	return domain.NewAppErrorWithCause(domain.ErrAPI, message, 502, cause, nil)
}
