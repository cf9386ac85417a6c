// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entrez

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubmed-miner/pkg/types"
)

const esearchOK = `<?xml version="1.0" encoding="UTF-8" ?>
<!DOCTYPE eSearchResult PUBLIC "-//NLM//DTD esearch 20060628//EN" "https://eutils.ncbi.nlm.nih.gov/eutils/dtd/20060628/esearch.dtd">
<eSearchResult><Count>3</Count><RetMax>3</RetMax><RetStart>0</RetStart><IdList>
<Id>111</Id>
<Id>222</Id>
<Id>333</Id>
</IdList><TranslationSet/><QueryTranslation>sepsis[All Fields]</QueryTranslation></eSearchResult>`

const esearchEmpty = `<?xml version="1.0" encoding="UTF-8" ?>
<eSearchResult><Count>0</Count><RetMax>0</RetMax><RetStart>0</RetStart><IdList/>
<ErrorList><PhraseNotFound>zzzqqq</PhraseNotFound></ErrorList></eSearchResult>`

const esearchError = `<?xml version="1.0" encoding="UTF-8" ?>
<eSearchResult><ERROR>Invalid db name specified: pubmd</ERROR></eSearchResult>`

func testConfig(baseURL string) types.EntrezConfig {
	return types.EntrezConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test/0.1"},
		BaseURL:    baseURL,
		Email:      "researcher@example.org",
		Tool:       "pubmed-miner-test",
		RateLimit:  1000,
	}
}

// captureServer records the last request's path and query and answers with body.
func captureServer(t *testing.T, status int, body string) (*httptest.Server, *url.URL) {
	t.Helper()
	var last url.URL
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last = *r.URL
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts, &last
}

func TestSearch_ReturnsIDsInOrder(t *testing.T) {
	ts, last := captureServer(t, http.StatusOK, esearchOK)
	c := New(testConfig(ts.URL), ts.Client())

	ids, err := c.Search(context.Background(), types.SearchQuery{
		Term: "sepsis", MaxRecords: 3, Database: "pubmed",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"111", "222", "333"}, ids)

	assert.Equal(t, "/esearch.fcgi", last.Path)
	q := last.Query()
	assert.Equal(t, "pubmed", q.Get("db"))
	assert.Equal(t, "sepsis", q.Get("term"))
	assert.Equal(t, "3", q.Get("retmax"))
	assert.Equal(t, "acc", q.Get("idtype"))
	assert.Equal(t, "researcher@example.org", q.Get("email"))
	assert.Equal(t, "pubmed-miner-test", q.Get("tool"))
}

func TestSearch_OmitsUnsetDates(t *testing.T) {
	ts, last := captureServer(t, http.StatusOK, esearchOK)
	c := New(testConfig(ts.URL), ts.Client())

	_, err := c.Search(context.Background(), types.SearchQuery{Term: "sepsis", MaxRecords: 3, Database: "pubmed"})
	require.NoError(t, err)

	q := last.Query()
	for _, key := range []string{"mindate", "maxdate", "datetype"} {
		_, present := q[key]
		assert.False(t, present, "%s should not be sent", key)
	}
}

func TestSearch_SendsDateRange(t *testing.T) {
	ts, last := captureServer(t, http.StatusOK, esearchOK)
	c := New(testConfig(ts.URL), ts.Client())

	_, err := c.Search(context.Background(), types.SearchQuery{
		Term:       "sepsis",
		MinDate:    time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		MaxDate:    time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC),
		MaxRecords: 3,
		Database:   "pubmed",
	})
	require.NoError(t, err)

	q := last.Query()
	assert.Equal(t, "2019/01/01", q.Get("mindate"))
	assert.Equal(t, "2021/12/31", q.Get("maxdate"))
	assert.Equal(t, "pdat", q.Get("datetype"))
}

func TestSearch_EmptyIdList(t *testing.T) {
	ts, _ := captureServer(t, http.StatusOK, esearchEmpty)
	c := New(testConfig(ts.URL), ts.Client())

	ids, err := c.Search(context.Background(), types.SearchQuery{Term: "zzzqqq", MaxRecords: 5, Database: "pubmed"})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"service error element", http.StatusOK, esearchError},
		{"malformed xml", http.StatusOK, "<eSearchResult><IdList><Id>1</IdList>"},
		{"http 500", http.StatusInternalServerError, "backend down"},
		{"http 429 is not retried", http.StatusTooManyRequests, `{"error":"API rate limit exceeded"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _ := captureServer(t, tt.status, tt.body)
			c := New(testConfig(ts.URL), ts.Client())

			_, err := c.Search(context.Background(), types.SearchQuery{Term: "x", MaxRecords: 1, Database: "pubmed"})
			require.Error(t, err)
		})
	}
}

func TestSearch_StatusErrorCarriesCode(t *testing.T) {
	ts, _ := captureServer(t, http.StatusBadGateway, "bad gateway")
	c := New(testConfig(ts.URL), ts.Client())

	_, err := c.Search(context.Background(), types.SearchQuery{Term: "x", MaxRecords: 1, Database: "pubmed"})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Equal(t, "esearch.fcgi", se.Endpoint)
}

func TestFetchRecord(t *testing.T) {
	const doc = `<PubmedArticleSet><PubmedArticle/></PubmedArticleSet>`
	ts, last := captureServer(t, http.StatusOK, doc)
	c := New(testConfig(ts.URL), ts.Client())

	body, err := c.FetchRecord(context.Background(), "pubmed", "35012345")
	require.NoError(t, err)
	assert.Equal(t, doc, string(body))

	assert.Equal(t, "/efetch.fcgi", last.Path)
	q := last.Query()
	assert.Equal(t, "pubmed", q.Get("db"))
	assert.Equal(t, "35012345", q.Get("id"))
	assert.Equal(t, "xml", q.Get("retmode"))
	assert.Equal(t, "researcher@example.org", q.Get("email"))
}

func TestFetchRecord_HTTPError(t *testing.T) {
	ts, _ := captureServer(t, http.StatusBadRequest, "Cannot process ID list")
	c := New(testConfig(ts.URL), ts.Client())

	_, err := c.FetchRecord(context.Background(), "pubmed", "bogus")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Contains(t, err.Error(), "Cannot process ID list")
}

func TestMissingContactMakesNoRequest(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer ts.Close()

	cfg := testConfig(ts.URL)
	cfg.Email = ""
	c := New(cfg, ts.Client())

	_, err := c.FetchRecord(context.Background(), "pubmed", "1")
	assert.ErrorIs(t, err, ErrMissingContact)
	assert.False(t, called)
}

func TestNewAppliesDefaults(t *testing.T) {
	c := New(types.EntrezConfig{Email: "a@b.c"}, nil)
	assert.Equal(t, DefaultBaseURL, c.cfg.BaseURL)
	assert.Equal(t, DefaultTool, c.cfg.Tool)
	assert.Equal(t, DefaultTimeout, c.cfg.Timeout)
	assert.Equal(t, "a@b.c", c.Contact())
}
