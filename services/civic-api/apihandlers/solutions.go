package apihandlers

import (
	"net/http"

	"github.com/civic-lens/civic-backend/pkg/apihelpers"
	"github.com/civic-lens/civic-backend/pkg/civic"
	"github.com/civic-lens/civic-backend/pkg/validation"
	"github.com/gin-gonic/gin"
)

func (h *HttpEndpoints) getSolutions(c *gin.Context) {
	solutions, err := h.civicService.ListSolutions(c.Request.Context())
	if err != nil {
		apihelpers.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, solutions)
}

func (h *HttpEndpoints) getSolution(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	solution, err := h.civicService.GetSolution(c.Request.Context(), id)
	if err != nil {
		apihelpers.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, solution)
}

func (h *HttpEndpoints) createSolution(c *gin.Context) {
	authorID, ok := callerID(c)
	if !ok {
		return
	}

	var req civic.CreateSolutionInput
	if err := validation.DecodeJSON(c.Request.Body, &req); err != nil {
		apihelpers.RespondWithError(c, err)
		return
	}

	solution, err := h.civicService.CreateSolution(c.Request.Context(), authorID, req)
	if err != nil {
		apihelpers.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, solution)
}

func (h *HttpEndpoints) patchSolution(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req civic.PatchSolutionInput
	if err := validation.DecodeJSON(c.Request.Body, &req); err != nil {
		apihelpers.RespondWithError(c, err)
		return
	}

	if err := h.civicService.PatchSolution(c.Request.Context(), id, req); err != nil {
		apihelpers.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *HttpEndpoints) deleteSolution(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.civicService.DeleteSolution(c.Request.Context(), id); err != nil {
		apihelpers.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// setSolutionBudget accepts a budget object or a JSON null, which clears the budget.
func (h *HttpEndpoints) setSolutionBudget(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req *civic.BudgetInput
	if err := validation.DecodeJSON(c.Request.Body, &req); err != nil {
		apihelpers.RespondWithError(c, err)
		return
	}

	if err := h.civicService.SetBudget(c.Request.Context(), id, req); err != nil {
		apihelpers.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
