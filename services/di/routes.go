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
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/AleutianDI/services/di/telemetry"
)

// RegisterRoutes mounts the analyzer endpoints under rg.
//
// Endpoints:
//
//	POST /di/analyze
//	POST /di/trend
//	GET  /di/history
//	GET  /di/history/:id
//	GET  /di/health
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	di := rg.Group("/di")
	di.Use(handlers.observeRequests)
	{
		di.POST("/analyze", handlers.HandleAnalyze)
		di.POST("/trend", handlers.HandleTrend)
		di.GET("/history", handlers.HandleHistory)
		di.GET("/history/:id", handlers.HandleGetRun)
		di.GET("/health", handlers.HandleHealth)
	}
}

// NewRouter builds the server engine: recovery, tracing, the v1 API and
// the Prometheus scrape endpoint at /metrics.
func NewRouter(handlers *Handlers, serviceName string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))

	v1 := router.Group("/v1")
	RegisterRoutes(v1, handlers)

	router.GET("/metrics", gin.WrapH(metricsHandler()))
	return router
}

func metricsHandler() http.Handler {
	if h := telemetry.MetricsHandler(); h != nil {
		return h
	}
	return promhttp.Handler()
}
