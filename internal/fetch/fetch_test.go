// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubmed-miner/pkg/types"
)

// --- fake source ---

type response struct {
	body string
	err  error
}

type fakeSource struct {
	records map[string]response
	calls   []string
	dbs     []string
}

func (f *fakeSource) FetchRecord(_ context.Context, database, id string) ([]byte, error) {
	f.calls = append(f.calls, id)
	f.dbs = append(f.dbs, database)
	r, ok := f.records[id]
	if !ok {
		return nil, errors.New("unknown id")
	}
	return []byte(r.body), r.err
}

// blockingSource waits for the request context to end.
type blockingSource struct{}

func (blockingSource) FetchRecord(ctx context.Context, _, _ string) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func record(abstract, author string) string {
	doc := `<PubmedArticle>`
	if abstract != "" {
		doc += `<Abstract><AbstractText>` + abstract + `</AbstractText></Abstract>`
	}
	doc += `<AuthorList><Author><ForeName>` + author + `</ForeName></Author></AuthorList></PubmedArticle>`
	return doc
}

func TestFetchAll_SepsisScenario(t *testing.T) {
	src := &fakeSource{records: map[string]response{
		"111": {body: record("Sepsis kills.", "Ann")},
		"222": {body: record("", "Jane Doe")},
		"333": {body: record("Fluids help!", "Bob")},
	}}
	f := New(src, types.FetchConfig{}, zerolog.Nop())

	recs, err := f.FetchAll(context.Background(), types.IdentifierList{"111", "222", "333"})
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, []string{"111", "222", "333"}, src.calls)
	assert.Equal(t, []string{"pubmed", "pubmed", "pubmed"}, src.dbs)

	assert.Equal(t, "Sepsis kills", recs[0].AbstractText)
	assert.Equal(t, types.NoAbstract, recs[1].AbstractText)
	assert.Equal(t, "Jane Doe ", recs[1].AuthorText)
	assert.Equal(t, "Fluids help", recs[2].AbstractText)

	s := Summarize(recs)
	assert.Equal(t, Summary{Fetched: 3, NoAbstract: 1}, s)
	assert.False(t, s.HasFailures())
}

func TestFetchAll_FailuresBecomePlaceholders(t *testing.T) {
	netErr := errors.New("connection reset")
	src := &fakeSource{records: map[string]response{
		"1": {body: record("One.", "A")},
		"2": {err: netErr},
		"3": {body: `<PubmedArticle><Abstract></PubmedArticle>`},
		"4": {body: record("Four.", "D")},
	}}
	f := New(src, types.FetchConfig{}, zerolog.Nop())

	recs, err := f.FetchAll(context.Background(), types.IdentifierList{"1", "2", "3", "4"})
	require.NoError(t, err)
	require.Len(t, recs, 4)

	assert.False(t, recs[0].Failed())
	assert.Equal(t, "Four", recs[3].AbstractText)

	require.True(t, recs[1].Failed())
	assert.Equal(t, "2", recs[1].Identifier)
	assert.Empty(t, recs[1].AbstractText)
	assert.Empty(t, recs[1].AuthorText)
	assert.ErrorIs(t, recs[1].Failure, ErrFetchFailed)
	assert.ErrorIs(t, recs[1].Failure, netErr)

	require.True(t, recs[2].Failed())
	assert.ErrorIs(t, recs[2].Failure, ErrParseFailed)
	assert.NotErrorIs(t, recs[2].Failure, ErrFetchFailed)

	var re *RecordError
	require.ErrorAs(t, recs[2].Failure, &re)
	assert.Equal(t, ParseFailed, re.Kind)
	assert.Equal(t, "3", re.ID)

	assert.Equal(t, Summary{Fetched: 2, Failed: 2}, Summarize(recs))
}

func TestFetchAll_RecordTimeout(t *testing.T) {
	f := New(blockingSource{}, types.FetchConfig{RecordTimeout: 20 * time.Millisecond}, zerolog.Nop())

	recs, err := f.FetchAll(context.Background(), types.IdentifierList{"1", "2"})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.ErrorIs(t, r.Failure, ErrFetchFailed)
		assert.ErrorIs(t, r.Failure, context.DeadlineExceeded)
	}
}

func TestFetchAll_CancelledParentAbortsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &fakeSource{records: map[string]response{"1": {body: record("x", "y")}}}
	f := New(src, types.FetchConfig{}, zerolog.Nop())
	f.OnProgress(func(done, _ int, _ types.ExtractedRecord) {
		if done == 1 {
			cancel()
		}
	})

	recs, err := f.FetchAll(ctx, types.IdentifierList{"1", "1", "1"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, recs)
	assert.Len(t, src.calls, 1)
}

func TestFetchAll_Empty(t *testing.T) {
	f := New(&fakeSource{}, types.FetchConfig{}, zerolog.Nop())
	recs, err := f.FetchAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestFetchAll_ProgressAndLogging(t *testing.T) {
	var logs bytes.Buffer
	src := &fakeSource{records: map[string]response{
		"1": {body: record("a", "b")},
		"2": {err: errors.New("boom")},
	}}
	f := New(src, types.FetchConfig{Database: "pmc"}, zerolog.New(&logs))

	var seen []int
	f.OnProgress(func(done, total int, _ types.ExtractedRecord) {
		assert.Equal(t, 2, total)
		seen = append(seen, done)
	})

	_, err := f.FetchAll(context.Background(), types.IdentifierList{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, seen)
	assert.Equal(t, []string{"pmc", "pmc"}, src.dbs)

	out := logs.String()
	assert.Contains(t, out, `"index":1`)
	assert.Contains(t, out, `"total":2`)
	assert.Contains(t, out, `"id":"2"`)
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, "fetch_failed")
}

func TestSummaryString(t *testing.T) {
	s := Summary{Fetched: 5, NoAbstract: 2, Failed: 1}
	assert.Equal(t, 6, s.Total())
	assert.Equal(t, "5 fetched (2 without abstract), 1 failed (total: 6)", s.String())
}
