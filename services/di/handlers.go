// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package di

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianDI/services/di/history"
	"github.com/AleutianAI/AleutianDI/services/di/observability"
	"github.com/AleutianAI/AleutianDI/services/di/telemetry"
)

const defaultHistoryLimit = 20

// Handlers contains the HTTP handlers for the analyzer.
type Handlers struct {
	svc     *Service
	metrics *observability.AnalyzerMetrics
}

// NewHandlers creates handlers for the given service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc, metrics: svc.metrics}
}

// HandleAnalyze handles POST /v1/di/analyze.
//
// Description:
//
//	Runs the analysis pipeline over the posted components and returns
//	the validated issues, accuracy metrics, trend and report.
//
// Responses:
//
//	200 - AnalysisResult
//	400 - INVALID_REQUEST, INVALID_FACTS
//	500 - ANALYZE_FAILED
func (h *Handlers) HandleAnalyze(c *gin.Context) {
	logger := requestLogger(c, "HandleAnalyze")

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	result, err := h.svc.Analyze(c.Request.Context(), req, SourceHTTP)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "ANALYZE_FAILED"
		if errors.Is(err, ErrInvalidRequest) {
			statusCode = http.StatusBadRequest
			errCode = "INVALID_FACTS"
		}
		logger.Error("Analyze failed", "error", err)
		c.JSON(statusCode, ErrorResponse{Error: err.Error(), Code: errCode})
		return
	}

	logger.Info("Analyze complete",
		"components", len(req.Components),
		"issues", len(result.Issues),
		"run_id", result.RunID)
	c.JSON(http.StatusOK, result)
}

// HandleTrend handles POST /v1/di/trend.
func (h *Handlers) HandleTrend(c *gin.Context) {
	logger := requestLogger(c, "HandleTrend")

	var req TrendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	report, err := h.svc.Trend(c.Request.Context(), req)
	if err != nil {
		logger.Error("Trend failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "TREND_FAILED"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// HandleHistory handles GET /v1/di/history?limit=N.
func (h *Handlers) HandleHistory(c *gin.Context) {
	logger := requestLogger(c, "HandleHistory")

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "limit must be a non-negative integer",
				Code:  "INVALID_LIMIT",
			})
			return
		}
		limit = n
	}

	runs, err := h.svc.History(c.Request.Context(), limit)
	if err != nil {
		if errors.Is(err, ErrHistoryDisabled) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "HISTORY_DISABLED"})
			return
		}
		logger.Error("History failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "HISTORY_FAILED"})
		return
	}
	c.JSON(http.StatusOK, HistoryResponse{Runs: runs})
}

// HandleGetRun handles GET /v1/di/history/:id.
func (h *Handlers) HandleGetRun(c *gin.Context) {
	logger := requestLogger(c, "HandleGetRun")

	run, err := h.svc.Run(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrHistoryDisabled):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "HISTORY_DISABLED"})
		case errors.Is(err, history.ErrRunNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "RUN_NOT_FOUND"})
		default:
			logger.Error("Get run failed", "error", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "HISTORY_FAILED"})
		}
		return
	}
	c.JSON(http.StatusOK, run)
}

// HandleHealth handles GET /v1/di/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	getOrCreateRequestID(c)
	c.JSON(http.StatusOK, HealthResponse{
		Status:         "healthy",
		Version:        ServiceVersion,
		HistoryEnabled: h.svc.HistoryEnabled(),
	})
}

// observeRequests counts requests by matched route and status.
func (h *Handlers) observeRequests(c *gin.Context) {
	c.Next()
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	h.metrics.ObserveRequest(route, c.Writer.Status())
}

// requestLogger tags the default logger with the request ID, the handler
// name and, when tracing is active, the trace ID.
func requestLogger(c *gin.Context, handler string) *slog.Logger {
	logger := slog.With("request_id", getOrCreateRequestID(c), "handler", handler)
	if traceID := telemetry.TraceID(c.Request.Context()); traceID != "" {
		logger = logger.With("trace_id", traceID)
	}
	return logger
}

// getOrCreateRequestID echoes or assigns X-Request-ID and exposes the
// active trace as X-Trace-ID.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	if traceID := telemetry.TraceID(c.Request.Context()); traceID != "" {
		c.Header("X-Trace-ID", traceID)
	}
	return requestID
}
