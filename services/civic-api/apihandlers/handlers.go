package apihandlers

import (
	"net/http"

	"github.com/civic-lens/civic-backend/pkg/apihelpers/middlewares"
	"github.com/civic-lens/civic-backend/pkg/civic"
	"github.com/gin-gonic/gin"
)

func HealthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type HttpEndpoints struct {
	civicService    *civic.Service
	tokenSignKey    string
	uploadSizeLimit int64
	uploadTempDir   string
	version         string
}

func NewHTTPHandler(
	civicService *civic.Service,
	tokenSignKey string,
	uploadSizeLimit int64,
	uploadTempDir string,
	version string,
) *HttpEndpoints {
	return &HttpEndpoints{
		civicService:    civicService,
		tokenSignKey:    tokenSignKey,
		uploadSizeLimit: uploadSizeLimit,
		uploadTempDir:   uploadTempDir,
		version:         version,
	}
}

func (h *HttpEndpoints) AddRoutes(rg *gin.RouterGroup) {
	rg.GET("/version", h.getVersion)

	h.addReportRoutes(rg)
	h.addSolutionRoutes(rg)
}

func (h *HttpEndpoints) addReportRoutes(rg *gin.RouterGroup) {
	requireIdentity := middlewares.RequireIdentity(h.tokenSignKey)
	withReportID := middlewares.ValidateObjectIDParams("id")

	reportsGroup := rg.Group("/reports")
	{
		reportsGroup.GET("", h.getReports)
		reportsGroup.POST("", requireIdentity, middlewares.RequirePayload(), h.createReport)

		reportGroup := reportsGroup.Group("/:id", withReportID)
		{
			reportGroup.GET("", h.getReport)
			reportGroup.PATCH("", requireIdentity, middlewares.RequirePayload(), h.patchReport)
			reportGroup.DELETE("", requireIdentity, h.deleteReport)
			reportGroup.PUT("/upvoters", requireIdentity, h.toggleUpvote)

			reportGroup.GET("/media", h.getReportMedia)
			reportGroup.POST("/media", requireIdentity, h.attachReportMedia)
			reportGroup.DELETE("/media", requireIdentity, h.detachReportMedia)
		}
	}
}

func (h *HttpEndpoints) addSolutionRoutes(rg *gin.RouterGroup) {
	requireIdentity := middlewares.RequireIdentity(h.tokenSignKey)
	withSolutionID := middlewares.ValidateObjectIDParams("id")

	solutionsGroup := rg.Group("/solutions")
	{
		solutionsGroup.GET("", h.getSolutions)
		solutionsGroup.POST("", requireIdentity, middlewares.RequirePayload(), h.createSolution)

		solutionGroup := solutionsGroup.Group("/:id", withSolutionID)
		{
			solutionGroup.GET("", h.getSolution)
			solutionGroup.PATCH("", requireIdentity, middlewares.RequirePayload(), h.patchSolution)
			solutionGroup.DELETE("", requireIdentity, h.deleteSolution)
			solutionGroup.PUT("/budget", requireIdentity, middlewares.RequirePayload(), h.setSolutionBudget)
		}
	}
}

func (h *HttpEndpoints) getVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": h.version})
}
