package mapacultural

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// eventSelect lists the fields requested from /event/find. Keeping the
// selection explicit bounds the payload size; the API returns everything
// otherwise.
const eventSelect = "id,name,shortDescription,longDescription,location," +
	"En_Municipio,En_Estado,En_CEP,acessibilidade,site,emailPublico," +
	"telefonePublico,classificacaoEtaria,terms,occurrences,seals"

const (
	defaultPageSize  = 100
	defaultPageDelay = 500 * time.Millisecond
	userAgent        = "MapaEventosCE/1.0"
)

// Progress describes one fetched page. Page is 1-based, PageCount the number
// of records on that page and Total the running total across pages.
type Progress struct {
	Page      int
	PageCount int
	Total     int
}

// ProgressFunc receives a Progress after each fetched page. It replaces the
// logging callback style with a structured event the caller can route to any
// sink (log line, metric, nothing).
type ProgressFunc func(Progress)

// Client talks to the Mapa Cultural API. The zero value is not usable; build
// one with NewClient.
type Client struct {
	baseURL string
	seal    string
	http    *http.Client

	// PageSize and PageDelay default to 100 records and 500ms. Tests lower
	// the delay; production keeps it to respect the remote rate expectations.
	PageSize  int
	PageDelay time.Duration
}

// NewClient builds a Client for the given base URL. seal filters the event
// listing to records carrying that seal id; timeout applies per request.
func NewClient(baseURL, seal string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   baseURL,
		seal:      seal,
		http:      &http.Client{Timeout: timeout},
		PageSize:  defaultPageSize,
		PageDelay: defaultPageDelay,
	}
}

// Events fetches one page of the event listing.
func (c *Client) Events(ctx context.Context, page, limit int) ([]Event, error) {
	params := url.Values{}
	params.Set("@select", eventSelect)
	params.Set("@files", "(avatar.avatarMedium,avatar.avatarBig):url")
	params.Set("@order", "name ASC")
	if c.seal != "" {
		params.Set("@seals", c.seal)
	}
	params.Set("@page", strconv.Itoa(page))
	params.Set("@limit", strconv.Itoa(limit))

	var events []Event
	if err := c.get(ctx, "/event/find", params, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// FetchAll pages through the entire event listing starting at page 1. It
// stops when a page comes back short or empty. A failed page request is
// logged and ends the pagination early: the records accumulated so far are
// still returned with a nil error, and the caller treats the short result as
// a degraded but usable fetch.
func (c *Client) FetchAll(ctx context.Context, onPage ProgressFunc) ([]Event, error) {
	size := c.PageSize
	if size <= 0 {
		size = defaultPageSize
	}

	var all []Event
	for page := 1; ; page++ {
		events, err := c.Events(ctx, page, size)
		if err != nil {
			log.Printf("mapacultural: page %d failed, stopping pagination: %v", page, err)
			break
		}
		if len(events) == 0 {
			break
		}
		all = append(all, events...)
		if onPage != nil {
			onPage(Progress{Page: page, PageCount: len(events), Total: len(all)})
		}
		if len(events) < size {
			break
		}
		// Inter-page pause so a full crawl does not hammer the API.
		time.Sleep(c.PageDelay)
	}
	return all, nil
}

// Seals fetches the full seal catalog from /seal/find.
func (c *Client) Seals(ctx context.Context) ([]Seal, error) {
	params := url.Values{}
	params.Set("@select", "id,name,shortDescription")
	params.Set("@order", "name ASC")

	var seals []Seal
	if err := c.get(ctx, "/seal/find", params, &seals); err != nil {
		return nil, err
	}
	return seals, nil
}

// get performs one GET request against the API and decodes the JSON body
// into dest.
func (c *Client) get(ctx context.Context, path string, params url.Values, dest any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("request %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
