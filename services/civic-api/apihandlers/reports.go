package apihandlers

import (
	"net/http"

	"github.com/civic-lens/civic-backend/pkg/apihelpers"
	"github.com/civic-lens/civic-backend/pkg/civic"
	civicTypes "github.com/civic-lens/civic-backend/pkg/civic/types"
	"github.com/civic-lens/civic-backend/pkg/validation"
	"github.com/gin-gonic/gin"
)

func (h *HttpEndpoints) getReports(c *gin.Context) {
	reports, err := h.civicService.ListReports(c.Request.Context())
	if err != nil {
		apihelpers.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (h *HttpEndpoints) getReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	report, err := h.civicService.GetReport(c.Request.Context(), id)
	if err != nil {
		apihelpers.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *HttpEndpoints) createReport(c *gin.Context) {
	authorID, ok := callerID(c)
	if !ok {
		return
	}

	var req civic.CreateReportInput
	if err := validation.DecodeJSON(c.Request.Body, &req); err != nil {
		apihelpers.RespondWithError(c, err)
		return
	}

	report, err := h.civicService.CreateReport(c.Request.Context(), authorID, req)
	if err != nil {
		apihelpers.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *HttpEndpoints) patchReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req civic.PatchReportInput
	if err := validation.DecodeJSON(c.Request.Body, &req); err != nil {
		apihelpers.RespondWithError(c, err)
		return
	}

	if err := h.civicService.PatchReport(c.Request.Context(), id, req); err != nil {
		apihelpers.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *HttpEndpoints) deleteReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.civicService.DeleteReport(c.Request.Context(), id); err != nil {
		apihelpers.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *HttpEndpoints) toggleUpvote(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	voterID, ok := callerID(c)
	if !ok {
		return
	}

	rawAction := c.Query("action")
	action, err := civicTypes.ParseVoteAction(rawAction)
	if err != nil {
		apihelpers.RespondWithError(c, civic.InvalidQueryParameter("action", rawAction, "action must be one of up, down"))
		return
	}

	if err := h.civicService.ToggleUpvote(c.Request.Context(), id, voterID, action); err != nil {
		apihelpers.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
