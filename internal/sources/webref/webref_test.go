package webref

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/agentstation/cssmap/internal/transport"
	"github.com/agentstation/cssmap/pkg/cssdata"
	"github.com/agentstation/cssmap/pkg/errors"
	"github.com/agentstation/cssmap/pkg/logging"
)

// fakeWebref serves index.json and css/<name>.json from in-memory documents.
// Names not in docs answer 404; names in failures answer 500.
type fakeWebref struct {
	index    string
	docs     map[string]string
	failures map[string]bool

	mu        sync.Mutex
	requested []string
	inFlight  atomic.Int32
	peak      atomic.Int32
	delay     time.Duration
}

func (f *fakeWebref) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	if r.URL.Path == "/index.json" {
		_, _ = w.Write([]byte(f.index))
		return
	}

	name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/css/"), ".json")
	f.mu.Lock()
	f.requested = append(f.requested, name)
	f.mu.Unlock()

	if f.failures[name] {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}
	doc, ok := f.docs[name]
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write([]byte(doc))
}

type aliasTable map[string]string

func (a aliasTable) FetchName(shortname string) string {
	if alias, ok := a[shortname]; ok {
		return alias
	}
	return shortname
}

func (a aliasTable) Note(shortname string) string {
	if shortname == "css-color-4" {
		return "Current work is being done in css-color-4, but the recommendation is css-color-3."
	}
	return ""
}

type countingObserver struct {
	mu     sync.Mutex
	counts map[Outcome]int
}

func (o *countingObserver) ObserveFetch(outcome Outcome, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = map[Outcome]int{}
	}
	o.counts[outcome]++
}

func newTestClient(t *testing.T, server *httptest.Server, opts ...Option) *Client {
	t.Helper()
	hc := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	t.Cleanup(hc.CloseIdleConnections)

	base := []Option{
		WithBaseURL(server.URL),
		WithTransport(transport.New(SourceName, transport.WithHTTPClient(hc))),
	}
	return New(append(base, opts...)...)
}

func entries(names ...string) []cssdata.SpecIndexEntry {
	out := make([]cssdata.SpecIndexEntry, len(names))
	for i, n := range names {
		out[i] = cssdata.SpecIndexEntry{Shortname: n}
	}
	return out
}

func TestFetchIndex(t *testing.T) {
	fake := &fakeWebref{index: `{"results":[{"shortname":"css-color-3","title":"CSS Color Level 3"}]}`}
	server := httptest.NewServer(fake)
	defer server.Close()

	idx, err := newTestClient(t, server).FetchIndex(context.Background())
	require.NoError(t, err)
	require.Len(t, idx.Results, 1)
	assert.Equal(t, "css-color-3", idx.Results[0].Shortname)
	assert.JSONEq(t, fake.index, string(idx.Raw))
}

func TestFetchIndexFailures(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "down", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		_, err := newTestClient(t, server).FetchIndex(context.Background())
		assert.True(t, errors.IsUpstreamUnavailable(err))
	})

	t.Run("malformed", func(t *testing.T) {
		server := httptest.NewServer(&fakeWebref{index: `{"results": [`})
		defer server.Close()

		_, err := newTestClient(t, server).FetchIndex(context.Background())
		var parseErr *errors.ParseError
		assert.ErrorAs(t, err, &parseErr)
	})
}

func TestAliasTransparency(t *testing.T) {
	fake := &fakeWebref{docs: map[string]string{
		"css-color": `{"properties":[{"name":"color"}]}`,
	}}
	server := httptest.NewServer(fake)
	defer server.Close()

	client := newTestClient(t, server, WithResolver(aliasTable{"css-color-4": "css-color"}))
	ds, report, err := client.FetchFeatures(context.Background(), entries("css-color-4"))
	require.NoError(t, err)

	require.Contains(t, ds, "css-color-4")
	assert.NotContains(t, ds, "css-color")
	assert.Equal(t, []string{"css-color"}, fake.requested)
	assert.Equal(t, []string{"css-color-4"}, report.Fetched)
	assert.Equal(t, "Current work is being done in css-color-4, but the recommendation is css-color-3.",
		ds["css-color-4"].Note)
}

func TestPartialFailureTolerance(t *testing.T) {
	defer goleak.VerifyNone(t)

	names := make([]string, 10)
	docs := map[string]string{}
	for i := range names {
		names[i] = fmt.Sprintf("spec-%d", i)
		if i != 4 {
			docs[names[i]] = fmt.Sprintf(`{"properties":[{"name":"prop-%d"}]}`, i)
		}
	}
	server := httptest.NewServer(&fakeWebref{docs: docs})
	defer server.Close()

	observer := &countingObserver{}
	ds, report, err := newTestClient(t, server, WithObserver(observer)).
		FetchFeatures(context.Background(), entries(names...))
	require.NoError(t, err)

	assert.Len(t, ds, 9)
	assert.NotContains(t, ds, "spec-4")
	assert.Equal(t, []string{"spec-4"}, report.Missing)
	assert.Empty(t, report.Failed)
	assert.NoError(t, report.Err())
	assert.Equal(t, 9, observer.counts[OutcomeFetched])
	assert.Equal(t, 1, observer.counts[OutcomeMissing])
}

func TestOtherFailuresAreReportedNotFatal(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	server := httptest.NewServer(&fakeWebref{
		docs: map[string]string{
			"css-grid-3": `{"properties":[{"name":"display"}]}`,
			"garbled":    `{"properties": [`,
		},
		failures: map[string]bool{"css-flaky": true},
	})
	defer server.Close()

	ds, report, err := newTestClient(t, server).
		FetchFeatures(ctx, entries("css-grid-3", "css-flaky", "garbled", "made-up-spec"))
	require.NoError(t, err)

	assert.Equal(t, []string{"css-grid-3"}, ds.Shortnames())
	assert.ElementsMatch(t, []string{"css-flaky", "garbled"}, report.Failed)
	assert.Equal(t, []string{"made-up-spec"}, report.Missing)
	assert.Len(t, report.Errors(), 2)
	tl.AssertContains(t, "css-flaky")
	tl.AssertNotContains(t, `"spec":"made-up-spec"`)
}

func TestBatchesBoundInFlightRequests(t *testing.T) {
	docs := map[string]string{}
	names := make([]string, 7)
	for i := range names {
		names[i] = fmt.Sprintf("s%d", i)
		docs[names[i]] = `{}`
	}
	fake := &fakeWebref{docs: docs, delay: 20 * time.Millisecond}
	server := httptest.NewServer(fake)
	defer server.Close()

	ds, _, err := newTestClient(t, server, WithBatchSize(3)).FetchFeatures(context.Background(), entries(names...))
	require.NoError(t, err)
	assert.Len(t, ds, 7)
	assert.LessOrEqual(t, fake.peak.Load(), int32(3))
}

func TestCanceledContextStopsBatches(t *testing.T) {
	server := httptest.NewServer(&fakeWebref{docs: map[string]string{"a": `{}`}})
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ds, report, err := newTestClient(t, server).FetchFeatures(ctx, entries("a"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ds)
	assert.Empty(t, report.Fetched)
}

func TestURLs(t *testing.T) {
	c := New(WithBaseURL("https://example.test/ed/"))
	assert.Equal(t, "https://example.test/ed/index.json", c.IndexURL())
	assert.Equal(t, "https://example.test/ed/css/css-color.json", c.FeaturesURL("css-color"))
}
