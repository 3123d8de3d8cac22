// Package acquire resolves a law identifier (URN or alias) into either
// structured JSON or HTML source for the parsers, following the ranked
// binary-text variant fallback described in spec §4.3.
package acquire

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Sentinel errors for the acquisition-stage failure taxonomy (spec §7).
var (
	ErrNotFound       = errors.New("law not found")
	ErrNetwork        = errors.New("network error reaching normas.leg.br")
	ErrNoVariant      = errors.New("no fetchable binary-text variant available")
	ErrUnknownAlias   = errors.New("unknown law alias")
)

// Kind identifies what a Result carries.
type Kind string

const (
	KindJSON Kind = "json"
	KindHTML Kind = "html"
)

// Result is what Fetch returns: either a structured JSON payload (with
// hasPart) or raw HTML, plus the metadata needed to seed the output's
// "lei" object.
type Result struct {
	Kind     Kind
	JSON     map[string]any
	HTML     string
	Metadata Metadata
}

// Metadata is the subset of law metadata the acquisition stage can extract
// without a full parse.
type Metadata struct {
	Title    string
	URN      string
	Date     string
	Ementa   string
	Keywords string
}

// Config configures a Client. Zero value uses a new http.Client with a
// 60-second timeout, no cache, and the production API base URL.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Cache      *DiskCache // optional; nil disables caching
	UserAgent  string
	Timeout    time.Duration
}

const defaultBaseURL = "https://normas.leg.br/api/public"
const defaultUserAgent = "lawimporter/1.0"

// Client fetches laws from the normas.leg.br API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *DiskCache
	userAgent  string
}

// NewClient returns a Client built from config, filling in defaults for any
// zero fields.
func NewClient(config Config) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout == 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		cache:      config.Cache,
		userAgent:  userAgent,
	}
}

// Fetch resolves urn to a JSON or HTML source, per spec §4.3:
//  1. request the structured endpoint; return Kind=JSON if it has hasPart.
//  2. otherwise extract metadata, select a binary-text variant by priority,
//     and fetch its HTML.
func (client *Client) Fetch(urn string) (Result, error) {
	if cached, ok := client.cacheGet(urn); ok {
		return cached, nil
	}

	url := fmt.Sprintf("%s/normas?urn=%s&tipo_documento=maior-detalhe", client.baseURL, urn)

	body, status, err := client.get(url, "application/json")
	if err != nil {
		return Result{}, fmt.Errorf("fetching structured JSON for %s: %w", urn, err)
	}
	if status == http.StatusNotFound {
		return Result{}, fmt.Errorf("%w: %s", ErrNotFound, urn)
	}
	if status != http.StatusOK {
		return Result{}, fmt.Errorf("%w: HTTP %d fetching %s", ErrNetwork, status, url)
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return Result{}, fmt.Errorf("decoding structured JSON for %s: %w", urn, err)
	}

	metadata := extractMetadata(data)

	if _, hasParts := data["hasPart"]; hasParts {
		result := Result{Kind: KindJSON, JSON: data, Metadata: metadata}
		client.cacheSet(urn, result)
		return result, nil
	}

	uuid, ok := selectVariant(data)
	if !ok {
		return Result{}, fmt.Errorf("%w for %s", ErrNoVariant, urn)
	}

	html, err := client.fetchHTML(uuid)
	if err != nil {
		return Result{}, fmt.Errorf("fetching HTML binary %s for %s: %w", uuid, urn, err)
	}

	result := Result{Kind: KindHTML, HTML: html, Metadata: metadata}
	client.cacheSet(urn, result)
	return result, nil
}

// FetchLocal bypasses the network for a caller-supplied HTML file, filling
// in metadata from the best-effort alias table (spec §4.3, "If caller
// supplied local HTML...").
func FetchLocal(html string, aliasOrURN string) Result {
	metadata := Metadata{URN: aliasOrURN}
	if urn, ok := LookupAlias(aliasOrURN); ok {
		metadata.URN = urn
	}
	return Result{Kind: KindHTML, HTML: html, Metadata: metadata}
}

func (client *Client) fetchHTML(uuid string) (string, error) {
	url := fmt.Sprintf("%s/binario/%s/texto", client.baseURL, uuid)

	body, status, err := client.get(url, "")
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("%w: HTTP %d fetching %s", ErrNetwork, status, url)
	}
	return string(body), nil
}

func (client *Client) get(url, accept string) ([]byte, int, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", client.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// extractMetadata pulls the headline/identifier fields normas.leg.br
// returns alongside (or instead of) hasPart.
func extractMetadata(data map[string]any) Metadata {
	return Metadata{
		Title:    stringField(data, "headline"),
		URN:      firstNonEmpty(stringField(data, "legislationIdentifier"), stringField(data, "@id")),
		Date:     stringField(data, "legislationDate"),
		Ementa:   stringField(data, "abstract"),
		Keywords: stringField(data, "keywords"),
	}
}

func stringField(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// binaryURLPattern extracts the UUID from a contentUrl like
// ".../binario/<uuid>/texto".
var binaryURLPattern = regexp.MustCompile(`/binario/([a-f0-9-]+)/texto`)

// selectVariant picks the binary-text encoding to fetch, in priority order
// (spec §4.3):
//  1. version == "Current"
//  2. additionalType contains "Compilacao" or "Vigente"
//  3. additionalType contains "PublicacaoOriginal"
//  4. last variant in listing order
func selectVariant(data map[string]any) (string, bool) {
	raw, ok := data["encoding"].([]any)
	if !ok {
		return "", false
	}

	encodings := make([]map[string]any, 0, len(raw))
	for _, e := range raw {
		if m, ok := e.(map[string]any); ok {
			encodings = append(encodings, m)
		}
	}
	if len(encodings) == 0 {
		return "", false
	}

	if uuid, ok := firstMatchingUUID(encodings, func(e map[string]any) bool {
		return stringField(e, "version") == "Current"
	}); ok {
		return uuid, true
	}

	if uuid, ok := firstMatchingUUID(encodings, func(e map[string]any) bool {
		t := stringField(e, "additionalType")
		return strings.Contains(t, "Compilacao") || strings.Contains(t, "Vigente")
	}); ok {
		return uuid, true
	}

	if uuid, ok := firstMatchingUUID(encodings, func(e map[string]any) bool {
		return strings.Contains(stringField(e, "additionalType"), "PublicacaoOriginal")
	}); ok {
		return uuid, true
	}

	for i := len(encodings) - 1; i >= 0; i-- {
		if uuid, ok := uuidFromEncoding(encodings[i]); ok {
			return uuid, true
		}
	}
	return "", false
}

func firstMatchingUUID(encodings []map[string]any, pred func(map[string]any) bool) (string, bool) {
	for _, e := range encodings {
		if pred(e) {
			if uuid, ok := uuidFromEncoding(e); ok {
				return uuid, true
			}
		}
	}
	return "", false
}

func uuidFromEncoding(e map[string]any) (string, bool) {
	contentURL := stringField(e, "contentUrl")
	match := binaryURLPattern.FindStringSubmatch(contentURL)
	if match == nil {
		return "", false
	}
	return match[1], true
}

func (client *Client) cacheGet(urn string) (Result, bool) {
	if client.cache == nil {
		return Result{}, false
	}
	return client.cache.Get(urn)
}

func (client *Client) cacheSet(urn string, result Result) {
	if client.cache == nil {
		return
	}
	_ = client.cache.Set(urn, result)
}
