package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/dealsight/dealsight-engine/pkg/llm"
	"github.com/dealsight/dealsight-engine/pkg/middleware"
)

// defaultMaxRowsToShow bounds how much result data is embedded in an
// analysis prompt.
const defaultMaxRowsToShow = 50

// maxBatchItems caps /analyze-batch request lists.
const maxBatchItems = 5

// AskRequest is the /ask request body.
type AskRequest struct {
	Question    string  `json:"question"`
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// AnalyzeRequest is the /analyze request body. Data carries the rows to
// interpret, typically a /query response's rows field.
type AnalyzeRequest struct {
	Question      string          `json:"question"`
	Data          json.RawMessage `json:"data"`
	DataType      string          `json:"dataType,omitempty"`
	Model         string          `json:"model,omitempty"`
	Temperature   float64         `json:"temperature,omitempty"`
	MaxRowsToShow int             `json:"maxRowsToShow,omitempty"`
}

// AnalyzeTextRequest is the /analyze-text request body.
type AnalyzeTextRequest struct {
	Text         string  `json:"text"`
	AnalysisType string  `json:"analysisType,omitempty"`
	Model        string  `json:"model,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
}

// BatchItemResult is one entry of the /analyze-batch response. Exactly one
// of Analysis and Error is set.
type BatchItemResult struct {
	Analysis string `json:"analysis,omitempty"`
	Error    string `json:"error,omitempty"`
}

// AskHandler exposes free-form model access: direct questions and
// interpretation of previously fetched results.
type AskHandler struct {
	client llm.Client
	logger *zap.Logger
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(client llm.Client, logger *zap.Logger) *AskHandler {
	return &AskHandler{client: client, logger: logger}
}

// RegisterRoutes registers the ask handler's routes on the given mux.
func (h *AskHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /ask", h.Ask)
	mux.HandleFunc("POST /analyze", h.Analyze)
	mux.HandleFunc("POST /analyze-text", h.AnalyzeText)
	mux.HandleFunc("POST /analyze-batch", h.AnalyzeBatch)
}

// Ask handles POST /ask requests.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "missing_question", "question is required")
		return
	}

	answer, err := h.client.GenerateResponse(r.Context(), llm.Request{
		System:      "You are a helpful assistant for car dealership staff. Answer concisely.",
		Prompt:      req.Question,
		Model:       req.Model,
		Temperature: req.Temperature,
	})
	if err != nil {
		h.serverError(w, r.Context(), "ask failed", err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// Analyze handles POST /analyze requests.
func (h *AskHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}

	analysis, errCode, err := h.analyzeOne(r.Context(), &req)
	if err != nil {
		if errCode == "llm_error" {
			h.serverError(w, r.Context(), "analyze failed", err)
			return
		}
		_ = ErrorResponse(w, http.StatusBadRequest, errCode, err.Error())
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]string{"analysis": analysis})
}

// AnalyzeText handles POST /analyze-text requests.
func (h *AskHandler) AnalyzeText(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "missing_text", "text is required")
		return
	}

	analysisType := req.AnalysisType
	if analysisType == "" {
		analysisType = "summary"
	}

	analysis, err := h.client.GenerateResponse(r.Context(), llm.Request{
		System:      fmt.Sprintf("Perform a %s analysis of the provided text for a car dealership audience.", analysisType),
		Prompt:      req.Text,
		Model:       req.Model,
		Temperature: req.Temperature,
	})
	if err != nil {
		h.serverError(w, r.Context(), "analyze-text failed", err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]string{"analysis": analysis})
}

// AnalyzeBatch handles POST /analyze-batch requests. Items fail
// independently; one bad item never aborts the rest.
func (h *AskHandler) AnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Requests []AnalyzeRequest `json:"requests"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}
	if len(req.Requests) == 0 {
		_ = ErrorResponse(w, http.StatusBadRequest, "missing_requests", "requests is required")
		return
	}
	if len(req.Requests) > maxBatchItems {
		_ = ErrorResponse(w, http.StatusBadRequest, "too_many_requests",
			fmt.Sprintf("a batch carries at most %d requests", maxBatchItems))
		return
	}

	results := make([]BatchItemResult, len(req.Requests))
	for i := range req.Requests {
		analysis, _, err := h.analyzeOne(r.Context(), &req.Requests[i])
		if err != nil {
			results[i] = BatchItemResult{Error: err.Error()}
			continue
		}
		results[i] = BatchItemResult{Analysis: analysis}
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{"results": results})
}

// analyzeOne validates one analysis request and runs the model call.
// The returned code distinguishes client mistakes from model failures.
func (h *AskHandler) analyzeOne(ctx context.Context, req *AnalyzeRequest) (string, string, error) {
	if strings.TrimSpace(req.Question) == "" {
		return "", "missing_question", fmt.Errorf("question is required")
	}
	if len(req.Data) == 0 || string(req.Data) == "null" {
		return "", "missing_data", fmt.Errorf("data is required")
	}

	dataType := req.DataType
	if dataType == "" {
		dataType = "query result"
	}

	maxRows := req.MaxRowsToShow
	if maxRows <= 0 {
		maxRows = defaultMaxRowsToShow
	}

	analysis, err := h.client.GenerateResponse(ctx, llm.Request{
		System:      fmt.Sprintf("You interpret %s data for car dealership staff. Base every statement on the data shown; say so when the data cannot answer the question.", dataType),
		Prompt:      fmt.Sprintf("Question: %s\n\nData:\n%s", req.Question, renderData(req.Data, maxRows)),
		Model:       req.Model,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", "llm_error", err
	}
	return analysis, "", nil
}

func (h *AskHandler) serverError(w http.ResponseWriter, ctx context.Context, msg string, err error) {
	h.logger.Error(msg,
		zap.String("request_id", middleware.RequestID(ctx)),
		zap.Error(err))
	_ = ErrorResponse(w, http.StatusInternalServerError, "llm_error", err.Error())
}

// renderData serializes the analysis payload, truncating arrays to maxRows
// entries so a large result cannot blow the prompt budget.
func renderData(data json.RawMessage, maxRows int) string {
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		// Not an array; embed as-is.
		return string(data)
	}

	if len(rows) <= maxRows {
		return string(data)
	}

	truncated, err := json.Marshal(rows[:maxRows])
	if err != nil {
		return string(data)
	}
	return fmt.Sprintf("%s\n(%d of %d rows shown)", truncated, maxRows, len(rows))
}
