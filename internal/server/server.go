package server

import (
	"time"

	"github.com/anmicius0/lims-batch-composer/internal/config"
	"github.com/anmicius0/lims-batch-composer/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter builds the Gin router with the configured API handlers.
func NewRouter(cfg *config.Config, store *SessionStore, sessions *SessionManager, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	handler := newHandler(cfg, store, sessions)

	router.GET(HealthEndpoint, handler.health)
	router.GET(MetricsEndpoint, gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	wizards := router.Group(WizardsPath, authMiddleware(cfg.APIToken, cfg.ReadOnlyAPIToken))
	wizards.POST("", handler.openWizard)
	wizards.GET("/:id", handler.getWizard)
	wizards.DELETE("/:id", handler.closeWizard)
	wizards.PUT("/:id/details", handler.updateDetails)
	wizards.POST("/:id/next", handler.next)
	wizards.POST("/:id/back", handler.back)
	wizards.POST("/:id/goto", handler.goTo)
	wizards.PUT("/:id/analyses", handler.setAnalyses)
	wizards.PUT("/:id/include-expired", handler.setIncludeExpired)
	wizards.PUT("/:id/projects", handler.setProjects)
	wizards.POST("/:id/refresh", handler.refresh)
	wizards.PUT("/:id/sort", handler.setSort)
	wizards.PUT("/:id/containers", handler.selectContainers)
	wizards.POST("/:id/compatibility", handler.validateCompatibility)
	wizards.POST("/:id/qc/suggest", handler.suggestQC)
	wizards.POST("/:id/qc", handler.addQC)
	wizards.PUT("/:id/qc/:index", handler.updateQC)
	wizards.DELETE("/:id/qc/:index", handler.removeQC)
	wizards.POST("/:id/sub-batches/open", handler.openSubBatches)
	wizards.POST("/:id/sub-batches/toggle", handler.toggleSubBatch)
	wizards.POST("/:id/sub-batches/confirm", handler.confirmSubBatches)
	wizards.POST("/:id/sub-batches/dismiss", handler.dismissSubBatches)
	wizards.POST("/:id/submit", handler.submit)

	return router
}

// requestLogger logs every request through zap in place of gin's default logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		utils.Logger.Info("Handled request",
			zap.String(utils.FieldMethod, c.Request.Method),
			zap.String(utils.FieldEndpoint, c.FullPath()),
			zap.Int(utils.FieldStatusCode, c.Writer.Status()),
			zap.Duration(utils.FieldDuration, time.Since(start)))
	}
}
