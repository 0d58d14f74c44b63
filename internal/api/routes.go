package api

import "github.com/gin-gonic/gin"

// RegisterRoutes wires the matching engine's operations onto router,
// gating the run endpoint with a per-cohort rate limiter and every
// mutating endpoint with initiator identity extraction.
func RegisterRoutes(router *gin.RouterGroup, h *Handler, tokenSecret, runRate string) {
	cohorts := router.Group("/cohorts")
	{
		cohorts.GET("/:id/readiness", h.GetReadiness)

		authenticated := cohorts.Group("")
		authenticated.Use(initiatorMiddleware(tokenSecret))

		authenticated.POST("/:id/runs", cohortRunRateLimiter(runRate), h.CreateRun)
		authenticated.POST("/:id/runs/:runID/overrides", h.CreateOverride)
		authenticated.POST("/:id/active-run", h.SetActiveRun)
		authenticated.POST("/:id/scores/recompute", h.RecomputeScores)
	}

	router.GET("/participants/:id/match", h.GetParticipantMatch)
}
