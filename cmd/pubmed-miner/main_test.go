// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubmed-miner/pkg/types"
)

var records = map[string]string{
	"111": `<PubmedArticleSet><PubmedArticle><Abstract><AbstractText>Sepsis, a killer.</AbstractText></Abstract>` +
		`<AuthorList><Author><LastName>Lee</LastName><ForeName>Ann</ForeName></Author></AuthorList></PubmedArticle></PubmedArticleSet>`,
	"222": `<PubmedArticleSet><PubmedArticle><AuthorList><Author><LastName>Doe</LastName><ForeName>Jane</ForeName></Author></AuthorList></PubmedArticle></PubmedArticleSet>`,
}

// entrezServer answers esearch with 111, 222, 333 and efetch from
// records; 333 fails with HTTP 500.
type entrezServer struct {
	*httptest.Server
	mu     sync.Mutex
	emails []string
}

func newEntrezServer(t *testing.T) *entrezServer {
	t.Helper()
	s := &entrezServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		s.mu.Lock()
		s.emails = append(s.emails, q.Get("email"))
		s.mu.Unlock()

		switch r.URL.Path {
		case "/esearch.fcgi":
			fmt.Fprint(w, `<eSearchResult><Count>3</Count><IdList><Id>111</Id><Id>222</Id><Id>333</Id></IdList></eSearchResult>`)
		case "/efetch.fcgi":
			body, ok := records[q.Get("id")]
			if !ok {
				http.Error(w, "backend unavailable", http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, body)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func testConfig(baseURL, dir string) types.Config {
	return types.Config{
		Entrez: types.EntrezConfig{BaseURL: baseURL, RateLimit: 100},
		Search: types.SearchConfig{Database: "pubmed", MaxRecords: 10, OutputDir: dir},
		Fetch:  types.FetchConfig{Database: "pubmed"},
		Export: types.ExportConfig{Format: types.FormatCSV, DBPath: filepath.Join(dir, "corpus.db")},
	}
}

const wantCSV = "Abstract,DOIS,Authors\n" +
	"Sepsis a killer,111,Lee Ann \n" +
	"No Abstract,222,Doe Jane \n" +
	",333,\n"

func TestPipeline_SearchFetchExport(t *testing.T) {
	srv := newEntrezServer(t)
	dir := t.TempDir()
	var out bytes.Buffer
	p := newPipeline(testConfig(srv.URL, dir), zerolog.Nop(), &out)
	ctx := context.Background()

	ids, err := p.Search(ctx, "me@example.org", types.SearchQuery{Term: "sepsis", MaxRecords: 3, Database: "pubmed"})
	require.NoError(t, err)
	assert.Equal(t, types.IdentifierList{"111", "222", "333"}, ids)

	prov, err := os.ReadFile(filepath.Join(dir, "sepsis_pmidList.txt"))
	require.NoError(t, err)
	assert.Equal(t, "['111', '222', '333']", string(prov))

	recs, err := p.Fetch(ctx, "me@example.org", ids)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.True(t, recs[2].Failed())
	assert.Contains(t, out.String(), "Downloaded article 1/3 (111)")
	assert.Contains(t, out.String(), "Failed article 3/3 (333)")
	assert.Contains(t, out.String(), "2 fetched (1 without abstract), 1 failed (total: 3)")

	path, err := p.Export(ctx, "sepsis", recs, filepath.Join(dir, "sepsis"))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, wantCSV, string(data))

	srv.mu.Lock()
	defer srv.mu.Unlock()
	require.Len(t, srv.emails, 4)
	for _, e := range srv.emails {
		assert.Equal(t, "me@example.org", e)
	}
}

func TestPipeline_ReusesClientPerContact(t *testing.T) {
	p := newPipeline(testConfig("http://localhost", t.TempDir()), zerolog.Nop(), &bytes.Buffer{})
	a := p.clientFor("a@example.org")
	assert.Same(t, a, p.clientFor("a@example.org"))
	b := p.clientFor("b@example.org")
	assert.NotSame(t, a, b)
	assert.Equal(t, "b@example.org", b.Contact())
}

func TestMineAndCorpusCommands(t *testing.T) {
	srv := newEntrezServer(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "pubmed-miner.yaml")
	cfgYAML := fmt.Sprintf(`entrez:
  base_url: %s
  rate_limit: 100
search:
  output_dir: %s
export:
  db_path: %s
logging:
  level: error
`, srv.URL, dir, filepath.Join(dir, "corpus.db"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o644))

	common := []string{
		"--config", cfgPath,
		"--env-file", filepath.Join(dir, "missing.env"),
		"--secrets-dir", filepath.Join(dir, "no-secrets"),
	}
	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&bytes.Buffer{})
		rootCmd.SetArgs(append(args, common...))
		require.NoError(t, rootCmd.ExecuteContext(context.Background()))
		return out.String()
	}

	out := run("mine", "sepsis", "--email", "me@example.org", "--max", "3",
		"--output", filepath.Join(dir, "sepsis"), "--archive")
	assert.Contains(t, out, "Corpus written to")

	data, err := os.ReadFile(filepath.Join(dir, "sepsis.csv"))
	require.NoError(t, err)
	assert.Equal(t, wantCSV, string(data))

	out = run("corpus", "list")
	assert.Contains(t, out, "sepsis")
	assert.Contains(t, out, "1 runs")

	out = run("corpus", "query", "killer")
	assert.Contains(t, out, "111")
	assert.Contains(t, out, "1 results")

	out = run("version")
	assert.Equal(t, "pubmed-miner dev\n", out)
}

func TestIdentifiersFromFlags(t *testing.T) {
	newCmd := func() *cobra.Command {
		c := &cobra.Command{}
		c.Flags().String("ids-file", "", "")
		c.Flags().String("query-file", "", "")
		return c
	}

	ids, term, err := identifiersFromFlags(newCmd(), []string{"111,222", " 333 ", ""})
	require.NoError(t, err)
	assert.Equal(t, types.IdentifierList{"111", "222", "333"}, ids)
	assert.Empty(t, term)

	path := filepath.Join(t.TempDir(), "sepsis_pmidList.txt")
	require.NoError(t, os.WriteFile(path, []byte("['9', '8']"), 0o644))
	c := newCmd()
	require.NoError(t, c.Flags().Set("ids-file", path))
	ids, _, err = identifiersFromFlags(c, nil)
	require.NoError(t, err)
	assert.Equal(t, types.IdentifierList{"9", "8"}, ids)

	require.NoError(t, c.Flags().Set("query-file", "q.yaml"))
	_, _, err = identifiersFromFlags(c, nil)
	assert.Error(t, err)
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "a b c", clip("a\n b\t c", 10))
	assert.Equal(t, "abcdefg...", clip(strings.Repeat("abcdefghij", 3), 10))
}
