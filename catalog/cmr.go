package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// defaultCMRHost is the production Common Metadata Repository host.
const defaultCMRHost = "cmr.earthdata.nasa.gov"

// CMRClient queries the catalog's granules.umm_json endpoint, paginating
// via the opaque CMR-Search-After cursor until the catalog reports
// exhaustion (spec.md §6, "Catalog wire").
type CMRClient struct {
	httpClient *http.Client
	host       string
}

// NewCMRClient constructs a CMRClient against the production CMR host.
func NewCMRClient() *CMRClient {
	return &CMRClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		host:       defaultCMRHost,
	}
}

type ummResponse struct {
	Items []struct {
		UMM struct {
			RelatedUrls []struct {
				URL  string `json:"URL"`
				Type string `json:"Type"`
			} `json:"RelatedUrls"`
		} `json:"umm"`
	} `json:"items"`
}

// Query runs a single (shortName, revisionDate) search against the
// catalog and returns every direct-access granule URI across all pages.
// Each page is retried once on a transient (5xx) failure; a persistent
// failure returns ErrCatalogTransport (spec §7, "Catalog/Transport").
func (c *CMRClient) Query(ctx context.Context, shortName, revisionDate, token string) ([]string, error) {
	var (
		uris        []string
		searchAfter string
	)

	for {
		resp, err := c.queryPage(ctx, shortName, revisionDate, token, searchAfter)
		if err != nil {
			return nil, err
		}

		var page ummResponse
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			resp.Body.Close()
			return nil, errors.Join(ErrCatalogTransport, err)
		}
		next := resp.Header.Get("CMR-Search-After")
		resp.Body.Close()

		for _, item := range page.Items {
			for _, related := range item.UMM.RelatedUrls {
				if related.Type == "GET DATA VIA DIRECT ACCESS" {
					uris = append(uris, related.URL)
				}
			}
		}

		if next == "" {
			break
		}
		searchAfter = next
	}

	return uris, nil
}

func (c *CMRClient) queryPage(ctx context.Context, shortName, revisionDate, token, searchAfter string) (*http.Response, error) {
	params := url.Values{}
	params.Set("short_name", shortName)
	params.Set("revision_date", revisionDate)
	params.Set("page_size", "2000")
	params.Set("token", token)

	reqURL := "https://" + c.host + "/search/granules.umm_json?" + params.Encode()

	do := func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		if searchAfter != "" {
			req.Header.Set("CMR-Search-After", searchAfter)
		}
		return c.httpClient.Do(req)
	}

	resp, err := do()
	if err == nil && resp.StatusCode < 500 {
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, errors.Join(ErrCatalogTransport, errors.New(resp.Status))
		}
		return resp, nil
	}
	if resp != nil {
		resp.Body.Close()
	}

	// Single retry on a transient (5xx or transport) failure.
	resp, err = do()
	if err != nil {
		return nil, errors.Join(ErrCatalogTransport, err)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, errors.Join(ErrCatalogTransport, errors.New(resp.Status))
	}
	return resp, nil
}

// ZipGranules filters uris to those ending in ".zip" (spec.md §6).
func ZipGranules(uris []string) []string {
	out := make([]string, 0, len(uris))
	for _, u := range uris {
		if strings.HasSuffix(u, ".zip") {
			out = append(out, u)
		}
	}
	return out
}
