package edgar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fintrace/insider/config"
	"github.com/fintrace/insider/errors"
)

func testClient(baseURL, fullTextURL string) *Client {
	c := NewClient(config.EdgarConfig{
		UserAgent:      "insider-test test@example.com",
		BaseURL:        baseURL,
		FullTextURL:    fullTextURL,
		TimeoutSeconds: 5,
		MaxRetries:     0,
	}, 10, zap.NewNop().Sugar())
	c.timeNow = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return c
}

const searchResponse = `{
  "hits": {
    "total": {"value": 1},
    "hits": [
      {"_source": {
        "adsh": "0001264731-24-000012",
        "file_date": "2024-03-01",
        "display_names": [
          "KLAPPA GALE E (CIK 0001264731)",
          "WEC ENERGY GROUP, INC. (WEC) (CIK 0000783325)"
        ],
        "ciks": ["0001264731", "0000783325"]
      }}
    ]
  }
}`

func TestSearchFilings(t *testing.T) {
	var gotBody fulltextRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(searchResponse))
	}))
	defer server.Close()

	c := testClient(server.URL, server.URL)
	refs, err := c.SearchFilings(context.Background(), "KLAPPA GALE")
	require.NoError(t, err)

	assert.Equal(t, `"KLAPPA GALE"`, gotBody.Query)
	assert.Equal(t, "3,4,5", gotBody.Forms)
	assert.Equal(t, "2014-06-01", gotBody.StartDate)
	assert.Equal(t, "2024-06-01", gotBody.EndDate)

	require.Len(t, refs, 1)
	ref := refs[0]
	assert.Equal(t, "0001264731-24-000012", ref.AccessionNo)
	assert.Equal(t, "0000783325", ref.EntityCIK)
	assert.Equal(t, "WEC ENERGY GROUP, INC.", ref.EntityName)
	assert.Equal(t, "KLAPPA GALE E", ref.FilerName)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), ref.Filed)
}

func TestSearchFilingsUnavailableOnStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := testClient(server.URL, server.URL)
	_, err := c.SearchFilings(context.Background(), "KLAPPA GALE")
	require.Error(t, err)
	assert.True(t, errors.IsSearchUnavailable(err))
}

func TestSearchFilingsUnavailableOnBadPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	c := testClient(server.URL, server.URL)
	_, err := c.SearchFilings(context.Background(), "KLAPPA GALE")
	require.Error(t, err)
	assert.True(t, errors.IsSearchUnavailable(err))
}

const ownershipFeed = `<?xml version="1.0" encoding="ISO-8859-1" ?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Company filings</title>
  <entry>
    <title>4 - KLAPPA GALE E (0001264731) (Reporting)</title>
    <updated>2024-03-01T17:23:09-05:00</updated>
  </entry>
  <entry>
    <title>4/A - CREVIER SCOTT J (0001895400) (Reporting)</title>
    <updated>2023-11-14T09:02:41-05:00</updated>
  </entry>
  <entry>
    <title>4 - WEC ENERGY GROUP, INC. (0000783325) (Issuer)</title>
    <updated>2024-03-01T17:23:09-05:00</updated>
  </entry>
</feed>`

func TestRecentFilers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cgi-bin/browse-edgar", r.URL.Path)
		assert.Equal(t, "0000783325", r.URL.Query().Get("CIK"))
		assert.Equal(t, "atom", r.URL.Query().Get("output"))
		w.Write([]byte(ownershipFeed))
	}))
	defer server.Close()

	c := testClient(server.URL, server.URL)
	records, err := c.RecentFilers(context.Background(), "0000783325")
	require.NoError(t, err)

	// Issuer entries are not filers
	require.Len(t, records, 2)
	assert.Equal(t, "KLAPPA GALE E", records[0].Name)
	assert.Equal(t, "CREVIER SCOTT J", records[1].Name)
	assert.Equal(t, 2024, records[0].Filed.Year())
}

func TestCompanies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/company_tickers.json", r.URL.Path)
		w.Write([]byte(`{
			"1": {"cik_str": 783325, "ticker": "WEC", "title": "WEC ENERGY GROUP, INC."},
			"0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."}
		}`))
	}))
	defer server.Close()

	c := testClient(server.URL, server.URL)
	entities, err := c.Companies(context.Background())
	require.NoError(t, err)

	require.Len(t, entities, 2)
	assert.Equal(t, "0000320193", entities[0].CIK)
	assert.Equal(t, "AAPL", entities[0].Ticker)
	assert.Equal(t, 0, entities[0].Rank)
	assert.Equal(t, "0000783325", entities[1].CIK)
}

func TestParseDisplayName(t *testing.T) {
	tests := []struct {
		raw    string
		name   string
		ticker string
		cik    string
		ok     bool
	}{
		{"KLAPPA GALE E (CIK 0001264731)", "KLAPPA GALE E", "", "0001264731", true},
		{"WEC ENERGY GROUP, INC. (WEC) (CIK 0000783325)", "WEC ENERGY GROUP, INC.", "WEC", "0000783325", true},
		{"Berkshire Hathaway Inc (BRK-B) (CIK 1067983)", "Berkshire Hathaway Inc", "BRK-B", "0001067983", true},
		{"no cik here", "", "", "", false},
	}
	for _, tt := range tests {
		dn, ok := parseDisplayName(tt.raw)
		require.Equal(t, tt.ok, ok, tt.raw)
		if !ok {
			continue
		}
		assert.Equal(t, tt.name, dn.Name)
		assert.Equal(t, tt.ticker, dn.Ticker)
		assert.Equal(t, tt.cik, dn.CIK)
	}
}

func TestNormalizeCIK(t *testing.T) {
	assert.Equal(t, "0000783325", NormalizeCIK("783325"))
	assert.Equal(t, "0000783325", NormalizeCIK("0000783325"))
	assert.Equal(t, "0000000001", NormalizeCIK("1"))
}
