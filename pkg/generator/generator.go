// Package generator orchestrates SQL generation: rule-based prompt
// analysis, model invocation, and safety validation of the model output.
package generator

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/dealsight/dealsight-engine/pkg/analyzer"
	"github.com/dealsight/dealsight-engine/pkg/llm"
	"github.com/dealsight/dealsight-engine/pkg/logging"
	"github.com/dealsight/dealsight-engine/pkg/schema"
	"github.com/dealsight/dealsight-engine/pkg/sqlsafe"
)

// SchemaSource resolves the current schema snapshot.
type SchemaSource interface {
	Snapshot(ctx context.Context) *schema.Snapshot
}

// Result is the outcome of one generation. SQL is always a validated,
// executable statement; when the model output was unusable it is the
// read-only fallback and the diagnostic fields say why.
type Result struct {
	SQL          string
	Analysis     *analyzer.AnalysisResult
	RawModelSQL  string
	FromFallback bool
	RejectReason string
	ModelErr     error
}

// Generate never errors: every path yields a Result whose SQL passed
// validation. The diagnostic fields let callers distinguish model
// failures from policy rejections.
type Generator struct {
	client    llm.Client
	schema    SchemaSource
	validator *sqlsafe.StrictValidator
	logger    *zap.Logger
}

// New creates a Generator with the strict output policy.
func New(client llm.Client, source SchemaSource, validator *sqlsafe.StrictValidator, logger *zap.Logger) *Generator {
	return &Generator{
		client:    client,
		schema:    source,
		validator: validator,
		logger:    logger.Named("generator"),
	}
}

// Generate turns a natural-language question into one validated SELECT
// statement. Analysis always runs; the model call and validation degrade
// to the fallback statement rather than failing.
func (g *Generator) Generate(ctx context.Context, prompt string) *Result {
	analysis := analyzer.Analyze(prompt)
	screenFilters(&analysis, g.logger)

	res := &Result{Analysis: &analysis}

	snap := g.schema.Snapshot(ctx)
	if snap == nil {
		snap = schema.Static()
	}

	raw, err := g.client.GenerateResponse(ctx, llm.Request{
		System:      BuildSystemPrompt(snap, &analysis),
		Prompt:      prompt,
		Temperature: 0,
	})
	if err != nil {
		g.logger.Error("model call failed", zap.Error(err))
		res.ModelErr = err
		res.SQL = sqlsafe.FallbackStatement
		res.FromFallback = true
		return res
	}

	res.RawModelSQL = strings.TrimSpace(raw)
	if res.RawModelSQL == "" {
		res.SQL = sqlsafe.FallbackStatement
		res.FromFallback = true
		res.RejectReason = "model returned an empty statement"
		return res
	}

	cleaned, err := g.validator.Check(res.RawModelSQL)
	if err != nil {
		g.logger.Warn("model output rejected",
			zap.String("sql", logging.SanitizeQuery(res.RawModelSQL)),
			zap.Error(err))
		res.SQL = sqlsafe.FallbackStatement
		res.FromFallback = true
		res.RejectReason = err.Error()
		return res
	}

	res.SQL = cleaned
	return res
}

// screenFilters drops analyzer filter values that look like injection
// payloads before they reach the model prompt.
func screenFilters(analysis *analyzer.AnalysisResult, logger *zap.Logger) {
	kept := analysis.Filters[:0]
	for _, f := range analysis.Filters {
		if f.Value != "" && sqlsafe.LooksLikeInjection(f.Value) {
			logger.Warn("dropping suspicious filter value",
				zap.String("concept", f.Concept),
				zap.String("value", logging.SanitizeQuery(f.Value)))
			continue
		}
		kept = append(kept, f)
	}
	analysis.Filters = kept
}
