// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pdiddy/research-supervisor/internal/cache"
	"github.com/pdiddy/research-supervisor/internal/llm"
	"github.com/pdiddy/research-supervisor/internal/metrics"
	"github.com/pdiddy/research-supervisor/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// --- fakes ---

// fakeLLM answers each prompt by its leading instruction and records prompts.
type fakeLLM struct {
	mu      sync.Mutex
	prompts []string
	replies map[string]llm.Completion
}

func newFakeLLM() *fakeLLM {
	return &fakeLLM{replies: map[string]llm.Completion{
		"Generate possible hypotheses": {Text: "Hypotheses: coatings help\n1. anti-reflective layers"},
		"Analyze the following":        {Text: "Analysis: layers add 2%"},
		"Provide logical reasoning":    {Text: "Reasoning: less reflection\nmore absorption"},
		"Evaluate different":           {Text: "Evaluation: cost is the tradeoff"},
		"Summarize key insights":       {Text: "Summary: coatings are worth it"},
		"Based on the summary":         {Text: "Conclusion: adopt coatings"},
	}}
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) llm.Completion {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	for prefix, c := range f.replies {
		if strings.HasPrefix(prompt, prefix) {
			return c
		}
	}
	return llm.Completion{Err: errors.New("unexpected prompt")}
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeLLM) prompt(i int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prompts[i]
}

type fakeSearch struct {
	mu      sync.Mutex
	queries []string
	results []types.WebResult
}

func (f *fakeSearch) Search(ctx context.Context, query string) []types.WebResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	return f.results
}

func (f *fakeSearch) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

// memCache is an in-memory Cache with optional injected errors.
type memCache struct {
	mu      sync.Mutex
	records map[string]types.Record
	gets    int
	puts    int
	getErr  error
	putErr  error
}

func newMemCache() *memCache {
	return &memCache{records: map[string]types.Record{}}
}

func (c *memCache) Get(ctx context.Context, task string) (types.Record, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return types.Record{}, false, c.getErr
	}
	rec, ok := c.records[task]
	return rec, ok, nil
}

func (c *memCache) Put(ctx context.Context, rec types.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	if c.putErr != nil {
		return c.putErr
	}
	c.records[rec.Task] = rec
	return nil
}

var solarResults = []types.WebResult{
	{Title: "Anti-reflective coatings", Link: "https://example.org/arc", Snippet: "ARC improves yield"},
	{Title: "Bifacial modules", Link: "https://example.org/bf", Snippet: "Rear-side gain"},
}

// --- tests ---

func TestRunEmptyTask(t *testing.T) {
	c := newMemCache()
	o := New(newFakeLLM(), &fakeSearch{}, c, nil, nil)

	for _, task := range []string{"", "   ", "\n\t"} {
		_, err := o.Run(context.Background(), task)
		assert.ErrorIs(t, err, ErrEmptyTask)
	}
	assert.Zero(t, c.gets, "no cache access for an empty task")
}

func TestRunEndToEnd(t *testing.T) {
	fl := newFakeLLM()
	fs := &fakeSearch{results: solarResults}
	c := newMemCache()
	o := New(fl, fs, c, nil, nil)

	rec, err := o.Run(context.Background(), "solar panel efficiency")
	require.NoError(t, err)

	assert.Equal(t, "solar panel efficiency", rec.Task)
	assert.Equal(t, []string{"Hypotheses: coatings help", "1. anti-reflective layers"}, rec.Hypotheses)
	assert.Equal(t, solarResults, rec.WebResearch)
	assert.Equal(t, []string{"Analysis: layers add 2%"}, rec.Analysis)
	assert.Equal(t, []string{"Reasoning: less reflection", "more absorption"}, rec.Reasoning)
	assert.Equal(t, []string{"Evaluation: cost is the tradeoff"}, rec.Evaluation)
	assert.Equal(t, []string{"Summary: coatings are worth it"}, rec.Summary)
	assert.Equal(t, []string{"Conclusion: adopt coatings"}, rec.Conclusion)

	assert.Equal(t, 6, fl.calls())
	assert.Equal(t, []string{"solar panel efficiency"}, fs.queries)
	assert.Equal(t, 1, c.puts)
	assert.Equal(t, rec, c.records["solar panel efficiency"])
}

func TestRunPromptChain(t *testing.T) {
	fl := newFakeLLM()
	o := New(fl, &fakeSearch{results: solarResults}, newMemCache(), nil, nil)

	_, err := o.Run(context.Background(), "tides")
	require.NoError(t, err)
	require.Equal(t, 6, fl.calls())

	assert.Equal(t, "Generate possible hypotheses based on: tides", fl.prompt(0))
	assert.Equal(t, "Analyze the following hypotheses and web research:\n"+
		"Hypotheses:\nHypotheses: coatings help\n1. anti-reflective layers\n\n"+
		"Web Research:\n"+
		"1. Anti-reflective coatings (https://example.org/arc)\n   ARC improves yield\n"+
		"2. Bifacial modules (https://example.org/bf)\n   Rear-side gain", fl.prompt(1))
	assert.Equal(t, "Provide logical reasoning based on this analysis:\nAnalysis: layers add 2%", fl.prompt(2))
	assert.Equal(t, "Evaluate different perspectives based on the reasoning:\nReasoning: less reflection\nmore absorption", fl.prompt(3))
	assert.Equal(t, "Summarize key insights from evaluation:\nEvaluation: cost is the tradeoff", fl.prompt(4))
	assert.Equal(t, "Based on the summary, provide a structured conclusion:\nSummary: coatings are worth it", fl.prompt(5))
}

func TestRunNoWebResults(t *testing.T) {
	fl := newFakeLLM()
	o := New(fl, &fakeSearch{}, newMemCache(), nil, nil)

	rec, err := o.Run(context.Background(), "tides")
	require.NoError(t, err)

	assert.NotNil(t, rec.WebResearch)
	assert.Empty(t, rec.WebResearch)
	assert.True(t, strings.HasSuffix(fl.prompt(1), "Web Research:\n"+noWebResults))
}

func TestRunCacheHitMakesNoExternalCalls(t *testing.T) {
	fl := newFakeLLM()
	fs := &fakeSearch{results: solarResults}
	c := newMemCache()
	o := New(fl, fs, c, nil, nil)
	ctx := context.Background()

	first, err := o.Run(ctx, "solar panel efficiency")
	require.NoError(t, err)
	require.Equal(t, 6, fl.calls())
	require.Equal(t, 1, fs.calls())

	second, err := o.Run(ctx, "solar panel efficiency")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 6, fl.calls(), "no completions on a cache hit")
	assert.Equal(t, 1, fs.calls(), "no search on a cache hit")
	assert.Equal(t, 1, c.puts, "no cache write on a cache hit")
}

func TestRunFailuresFlowDownstream(t *testing.T) {
	fl := newFakeLLM()
	fl.replies["Provide logical reasoning"] = llm.Completion{Err: llm.ErrMissingToken}
	c := newMemCache()
	o := New(fl, &fakeSearch{}, c, nil, nil)

	rec, err := o.Run(context.Background(), "tides")
	require.NoError(t, err)

	failure := "AI Request failed: HF_TOKEN is not set in environment variables"
	assert.Equal(t, []string{failure}, rec.Reasoning)
	assert.Equal(t, "Evaluate different perspectives based on the reasoning:\n"+failure, fl.prompt(3))
	assert.Equal(t, 1, c.puts, "a failed stage still reaches the cache write")
}

func TestRunAllCompletionsFail(t *testing.T) {
	fl := &fakeLLM{replies: map[string]llm.Completion{}}
	c := newMemCache()
	o := New(fl, &fakeSearch{}, c, nil, nil)

	rec, err := o.Run(context.Background(), "tides")
	require.NoError(t, err)

	for _, lines := range [][]string{rec.Hypotheses, rec.Analysis, rec.Reasoning, rec.Evaluation, rec.Summary, rec.Conclusion} {
		require.Len(t, lines, 1)
		assert.True(t, strings.HasPrefix(lines[0], llm.FailurePrefix))
	}
	assert.Equal(t, 1, c.puts)
}

func TestRunCacheErrors(t *testing.T) {
	t.Run("get", func(t *testing.T) {
		fl := newFakeLLM()
		c := newMemCache()
		c.getErr = errors.New("database is locked")
		o := New(fl, &fakeSearch{}, c, nil, nil)

		_, err := o.Run(context.Background(), "tides")
		assert.ErrorContains(t, err, "reading cache")
		assert.Zero(t, fl.calls())
	})

	t.Run("put", func(t *testing.T) {
		c := newMemCache()
		c.putErr = errors.New("disk full")
		o := New(newFakeLLM(), &fakeSearch{}, c, nil, nil)

		_, err := o.Run(context.Background(), "tides")
		assert.ErrorContains(t, err, "writing cache")
		assert.Empty(t, c.records)
	})
}

func TestRunCancelledContextSkipsWrite(t *testing.T) {
	c := newMemCache()
	o := New(newFakeLLM(), &fakeSearch{}, c, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Run(ctx, "tides")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, c.puts)
}

func TestRunRecordsMetrics(t *testing.T) {
	m := metrics.New()
	fl := newFakeLLM()
	fl.replies["Summarize key insights"] = llm.Completion{Err: errors.New("HTTP 503")}
	o := New(fl, &fakeSearch{}, newMemCache(), m, nil)
	ctx := context.Background()

	_, err := o.Run(ctx, "tides")
	require.NoError(t, err)
	_, err = o.Run(ctx, "tides")
	require.NoError(t, err)

	series, err := testutil.GatherAndCount(m.Registry(), "research_supervisor_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 2, series, "one series per source")

	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(`
# HELP research_supervisor_stage_total Pipeline stages executed, by stage and outcome.
# TYPE research_supervisor_stage_total counter
research_supervisor_stage_total{outcome="empty",stage="web_research"} 1
research_supervisor_stage_total{outcome="failed",stage="summary"} 1
research_supervisor_stage_total{outcome="ok",stage="analysis"} 1
research_supervisor_stage_total{outcome="ok",stage="conclusion"} 1
research_supervisor_stage_total{outcome="ok",stage="evaluation"} 1
research_supervisor_stage_total{outcome="ok",stage="hypotheses"} 1
research_supervisor_stage_total{outcome="ok",stage="reasoning"} 1
`), "research_supervisor_stage_total"))
}

func TestRunWithSQLiteCache(t *testing.T) {
	store, err := cache.NewStore(types.CacheConfig{DataDir: filepath.Join(t.TempDir(), "data"), DBFile: "memory.db"})
	require.NoError(t, err)
	defer store.Close()

	fl := newFakeLLM()
	o := New(fl, &fakeSearch{results: solarResults}, store, nil, nil)
	ctx := context.Background()

	first, err := o.Run(ctx, "solar panel efficiency")
	require.NoError(t, err)
	second, err := o.Run(ctx, "solar panel efficiency")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 6, fl.calls())

	tasks, err := store.ListTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"solar panel efficiency"}, tasks)
}
