package llm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// maxPageBytes bounds how much of a fetched page is read.
const maxPageBytes = 2 << 20

// PageFetcher retrieves a URL and converts the page to markdown for parsing.
type PageFetcher struct {
	client *http.Client
}

// NewPageFetcher creates a page fetcher.
func NewPageFetcher(client *http.Client) *PageFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &PageFetcher{client: client}
}

// FetchMarkdown GETs pageURL and returns the page content as markdown.
func (f *PageFetcher) FetchMarkdown(ctx context.Context, pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", fmt.Errorf("unsupported URL %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "hireloop-api/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", err
	}

	baseURL := parsed.Scheme + "://" + parsed.Host
	mdConverter := md.NewConverter(baseURL, true, nil)
	converted, err := mdConverter.ConvertString(string(body))
	if err != nil {
		return "", fmt.Errorf("convert page to markdown: %w", err)
	}
	return converted, nil
}
