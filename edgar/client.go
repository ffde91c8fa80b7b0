// Package edgar speaks the three external surfaces resolution depends on:
// the full-text search endpoint, the per-entity ownership filing feed, and
// the company universe file. It does no rate limiting of its own; callers
// gate every request through the shared budget.
package edgar

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/fintrace/insider/config"
	"github.com/fintrace/insider/errors"
	"github.com/fintrace/insider/internal/httpclient"
	"github.com/fintrace/insider/resolve"
)

const (
	ownershipForms = "3,4,5"
	// Per-entity feed page size. One page covers years of activity for a
	// typical filer.
	filingsPerEntity = 100
)

var (
	_ resolve.SearchIndex  = (*Client)(nil)
	_ resolve.FilingSource = (*Client)(nil)
	_ resolve.UniverseFeed = (*Client)(nil)
)

// Client implements resolve.SearchIndex, resolve.FilingSource and
// resolve.UniverseFeed over the EDGAR HTTP surfaces.
type Client struct {
	http          *httpclient.Client
	baseURL       string
	fullTextURL   string
	lookbackYears int
	timeNow       func() time.Time
	log           *zap.SugaredLogger
}

// NewClient builds the EDGAR client from configuration.
func NewClient(cfg config.EdgarConfig, lookbackYears int, log *zap.SugaredLogger) *Client {
	if lookbackYears <= 0 {
		lookbackYears = 10
	}
	return &Client{
		http:          httpclient.New(cfg.UserAgent, time.Duration(cfg.TimeoutSeconds)*time.Second, cfg.MaxRetries),
		baseURL:       cfg.BaseURL,
		fullTextURL:   cfg.FullTextURL,
		lookbackYears: lookbackYears,
		timeNow:       time.Now,
		log:           log,
	}
}

// SearchFilings queries the full-text index for ownership filings mentioning
// term, quoted as a phrase. Any transport, status or decode failure wraps
// errors.ErrSearchUnavailable so the caller falls through to the scan path.
func (c *Client) SearchFilings(ctx context.Context, term string) ([]resolve.FilingRef, error) {
	now := c.timeNow()
	body, err := json.Marshal(fulltextRequest{
		Query:     fmt.Sprintf("%q", term),
		Forms:     ownershipForms,
		DateRange: "custom",
		StartDate: now.AddDate(-c.lookbackYears, 0, 0).Format("2006-01-02"),
		EndDate:   now.Format("2006-01-02"),
	})
	if err != nil {
		return nil, errors.NewSearchUnavailable(err, "encode search request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.fullTextURL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewSearchUnavailable(err, "build search request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.NewSearchUnavailable(err, "full-text search")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewSearchUnavailable(
			errors.Newf("status %d", resp.StatusCode), "full-text search")
	}

	var result fulltextResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewSearchUnavailable(err, "decode search response")
	}

	refs := c.extractRefs(result)
	c.log.Debugw("Full-text search complete",
		"term", term, "total", result.Hits.Total.Value, "refs", len(refs))
	return refs, nil
}

// extractRefs turns search hits into filing references. Each hit names the
// reporting people and the issuer together; the issuer is the display name
// carrying a ticker, or failing that the last one listed.
func (c *Client) extractRefs(result fulltextResponse) []resolve.FilingRef {
	var refs []resolve.FilingRef
	for _, hit := range result.Hits.Hits {
		src := hit.Source

		var persons []displayName
		var issuer *displayName
		for _, raw := range src.DisplayNames {
			dn, ok := parseDisplayName(raw)
			if !ok {
				continue
			}
			if dn.Ticker != "" {
				issuer = &dn
				continue
			}
			persons = append(persons, dn)
		}
		if issuer == nil && len(persons) > 1 {
			issuer = &persons[len(persons)-1]
			persons = persons[:len(persons)-1]
		}
		if issuer == nil || len(persons) == 0 {
			continue
		}

		filed, err := time.Parse("2006-01-02", src.FileDate)
		if err != nil {
			c.log.Debugw("Unparseable file date", "adsh", src.AccessionNo, "date", src.FileDate)
			continue
		}

		for _, p := range persons {
			refs = append(refs, resolve.FilingRef{
				AccessionNo: src.AccessionNo,
				EntityCIK:   issuer.CIK,
				EntityName:  issuer.Name,
				FilerName:   p.Name,
				Filed:       filed,
			})
		}
	}
	return refs
}

// RecentFilers fetches the reporting-owner names on an entity's recent
// ownership filings from the browse feed.
func (c *Client) RecentFilers(ctx context.Context, cik string) ([]resolve.FilerRecord, error) {
	q := url.Values{}
	q.Set("action", "getcompany")
	q.Set("CIK", cik)
	q.Set("type", "4")
	q.Set("owner", "include")
	q.Set("count", strconv.Itoa(filingsPerEntity))
	q.Set("output", "atom")

	resp, err := c.http.Get(ctx, c.baseURL+"/cgi-bin/browse-edgar?"+q.Encode())
	if err != nil {
		return nil, errors.Wrapf(err, "ownership feed for %s", cik)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("ownership feed for %s: status %d", cik, resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, errors.Wrapf(err, "decode ownership feed for %s", cik)
	}

	var records []resolve.FilerRecord
	for _, entry := range feed.Entries {
		m := reportingTitleRe.FindStringSubmatch(entry.Title)
		if m == nil {
			continue
		}
		filed, err := time.Parse(time.RFC3339, entry.Updated)
		if err != nil {
			continue
		}
		records = append(records, resolve.FilerRecord{Name: m[1], Filed: filed})
	}

	return records, nil
}

// Companies fetches the entity universe, ranked by the feed's size ordinal.
func (c *Client) Companies(ctx context.Context) ([]resolve.Entity, error) {
	resp, err := c.http.Get(ctx, c.baseURL+"/files/company_tickers.json")
	if err != nil {
		return nil, errors.Wrap(err, "company universe fetch")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("company universe fetch: status %d", resp.StatusCode)
	}

	var raw map[string]companyRecord
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode company universe")
	}

	entities := make([]resolve.Entity, 0, len(raw))
	for ordinal, rec := range raw {
		rank, err := strconv.Atoi(ordinal)
		if err != nil {
			continue
		}
		entities = append(entities, resolve.Entity{
			CIK:    NormalizeCIK(strconv.FormatInt(rec.CIK, 10)),
			Name:   rec.Title,
			Ticker: rec.Ticker,
			Rank:   rank,
		})
	}

	sort.Slice(entities, func(i, j int) bool { return entities[i].Rank < entities[j].Rank })

	c.log.Debugw("Company universe loaded", "entities", len(entities))
	return entities, nil
}
