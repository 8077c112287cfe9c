// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the research stages for a task: hypotheses, web
// research, analysis, reasoning, evaluation, summary, and conclusion.
//
// The cache is consulted first and a hit ends the run. On a miss every stage
// runs in order, each model prompt built from the previous stage's output. A
// failed completion is carried forward as its failure text, so a run always
// reaches the cache write once the task is valid.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-supervisor/internal/llm"
	"github.com/pdiddy/research-supervisor/internal/metrics"
	"github.com/pdiddy/research-supervisor/pkg/types"
)

// ErrEmptyTask is returned by Run for a task that is blank after trimming.
var ErrEmptyTask = errors.New("missing task parameter")

// Completer produces one model completion per prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) llm.Completion
}

// Searcher returns scholarly hits for a query. It never fails; an empty
// slice means no web context.
type Searcher interface {
	Search(ctx context.Context, query string) []types.WebResult
}

// Cache stores one record per task.
type Cache interface {
	Get(ctx context.Context, task string) (types.Record, bool, error)
	Put(ctx context.Context, rec types.Record) error
}

// Orchestrator sequences the stages. It holds no per-run state and is safe
// for concurrent use.
type Orchestrator struct {
	llm     Completer
	search  Searcher
	cache   Cache
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New returns an Orchestrator wired to its collaborators. m and logger may be nil.
func New(completer Completer, searcher Searcher, cache Cache, m *metrics.Metrics, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		llm:     completer,
		search:  searcher,
		cache:   cache,
		metrics: m,
		logger:  logger.Named("pipeline"),
	}
}

// Run returns the cached record for task, or runs every stage, stores the
// result, and returns it. task is used as given; callers trim it.
//
// The only errors are ErrEmptyTask, cache failures, and a cancelled ctx
// observed before the cache write.
func (o *Orchestrator) Run(ctx context.Context, task string) (types.Record, error) {
	if strings.TrimSpace(task) == "" {
		return types.Record{}, ErrEmptyTask
	}
	log := o.logger.With(zap.String("task", task))

	cached, found, err := o.cache.Get(ctx, task)
	if err != nil {
		return types.Record{}, fmt.Errorf("reading cache: %w", err)
	}
	if found {
		log.Info("cache hit")
		o.metrics.Run(metrics.SourceCache)
		return cached, nil
	}

	log.Info("cache miss, running pipeline")
	start := time.Now()

	hypotheses := o.complete(ctx, log, StageHypotheses, promptData{Task: task})
	web := o.webResearch(ctx, log, task)
	analysis := o.complete(ctx, log, StageAnalysis, promptData{Hypotheses: hypotheses, Web: web})
	reasoning := o.complete(ctx, log, StageReasoning, promptData{Previous: analysis})
	evaluation := o.complete(ctx, log, StageEvaluation, promptData{Previous: reasoning})
	summary := o.complete(ctx, log, StageSummary, promptData{Previous: evaluation})
	conclusion := o.complete(ctx, log, StageConclusion, promptData{Previous: summary})

	rec := types.Record{
		Task:        task,
		Hypotheses:  types.SplitLines(hypotheses),
		WebResearch: web,
		Analysis:    types.SplitLines(analysis),
		Reasoning:   types.SplitLines(reasoning),
		Evaluation:  types.SplitLines(evaluation),
		Summary:     types.SplitLines(summary),
		Conclusion:  types.SplitLines(conclusion),
	}

	if err := ctx.Err(); err != nil {
		return types.Record{}, fmt.Errorf("pipeline interrupted: %w", err)
	}
	if err := o.cache.Put(ctx, rec); err != nil {
		return types.Record{}, fmt.Errorf("writing cache: %w", err)
	}

	o.metrics.Run(metrics.SourcePipeline)
	log.Info("pipeline complete", zap.Duration("elapsed", time.Since(start)))
	return rec, nil
}

// complete renders the stage prompt and returns the completion text, or its
// failure text when the call failed.
func (o *Orchestrator) complete(ctx context.Context, log *zap.Logger, stage string, data promptData) string {
	start := time.Now()
	prompt, err := renderPrompt(stage, data)
	if err != nil {
		log.Error("prompt render failed", zap.String("stage", stage), zap.Error(err))
		o.metrics.Stage(stage, metrics.OutcomeFailed, time.Since(start))
		return llm.Completion{Err: err}.String()
	}

	c := o.llm.Complete(ctx, prompt)
	outcome := metrics.OutcomeOK
	if !c.OK() {
		outcome = metrics.OutcomeFailed
		log.Warn("stage failed", zap.String("stage", stage), zap.Error(c.Err))
	} else {
		log.Debug("stage complete", zap.String("stage", stage), zap.Int("chars", len(c.Text)))
	}
	o.metrics.Stage(stage, outcome, time.Since(start))
	return c.String()
}

func (o *Orchestrator) webResearch(ctx context.Context, log *zap.Logger, task string) []types.WebResult {
	start := time.Now()
	results := o.search.Search(ctx, task)
	if results == nil {
		results = []types.WebResult{}
	}
	outcome := metrics.OutcomeOK
	if len(results) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	log.Debug("web research complete", zap.Int("results", len(results)))
	o.metrics.Stage(StageWebResearch, outcome, time.Since(start))
	return results
}
