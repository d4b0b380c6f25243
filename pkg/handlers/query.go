package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/dealsight/dealsight-engine/pkg/datasource"
	"github.com/dealsight/dealsight-engine/pkg/generator"
	"github.com/dealsight/dealsight-engine/pkg/logging"
	"github.com/dealsight/dealsight-engine/pkg/middleware"
	"github.com/dealsight/dealsight-engine/pkg/viz"
)

// SQLGenerator turns a natural-language question into a validated statement.
type SQLGenerator interface {
	Generate(ctx context.Context, prompt string) *generator.Result
}

// QueryRequest is the /query request body.
type QueryRequest struct {
	Prompt string `json:"prompt"`
	Limit  int    `json:"limit,omitempty"`
}

// QueryResponse is the /query success body.
type QueryResponse struct {
	SQL           string                  `json:"sql"`
	Columns       []datasource.ColumnInfo `json:"columns"`
	Rows          []map[string]any        `json:"rows"`
	RowCount      int                     `json:"row_count"`
	Visualization string                  `json:"visualization"`
}

// QueryHandler answers natural-language questions with executed SQL results.
type QueryHandler struct {
	generator SQLGenerator
	executor  datasource.QueryExecutor
	logger    *zap.Logger
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(gen SQLGenerator, executor datasource.QueryExecutor, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{generator: gen, executor: executor, logger: logger}
}

// RegisterRoutes registers the query handler's routes on the given mux.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /query", h.Query)
}

// Query handles POST /query requests.
//
// Failure mapping: a missing prompt is a client error before any model or
// database work; model output that fails the safety policy is a client
// error carrying the rejected SQL; model transport failures and database
// failures are server errors with the underlying message.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(zap.String("request_id", middleware.RequestID(r.Context())))

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "missing_prompt", "prompt is required")
		return
	}

	res := h.generator.Generate(r.Context(), req.Prompt)

	if res.ModelErr != nil {
		logger.Error("generation failed", zap.Error(res.ModelErr))
		_ = ErrorResponse(w, http.StatusInternalServerError, "llm_error", res.ModelErr.Error())
		return
	}

	if res.RejectReason != "" {
		// The fallback would run fine, but /query reports the rejection so
		// callers can see what the model produced.
		logger.Warn("generated SQL rejected",
			zap.String("reason", res.RejectReason),
			zap.String("sql", logging.SanitizeQuery(res.RawModelSQL)))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":        "policy_violation",
			"message":      res.RejectReason,
			"rejected_sql": res.RawModelSQL,
		})
		return
	}

	result, err := h.executor.Query(r.Context(), res.SQL, req.Limit)
	if err != nil {
		logger.Error("query execution failed",
			zap.String("sql", logging.SanitizeQuery(res.SQL)),
			zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "database_error", err.Error())
		return
	}

	logger.Info("query answered",
		zap.String("sql", logging.SanitizeQuery(res.SQL)),
		zap.Int("rows", result.RowCount))

	response := QueryResponse{
		SQL:           res.SQL,
		Columns:       result.Columns,
		Rows:          result.Rows,
		RowCount:      result.RowCount,
		Visualization: viz.Resolve(req.Prompt, result, viz.DefaultChart),
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		logger.Error("Failed to encode query response", zap.Error(err))
	}
}
