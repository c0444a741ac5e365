package handler

import (
	"github.com/finbook/backend/internal/application/backfill"
	"github.com/gin-gonic/gin"
)

// BackfillHandler handles counterparty backfill API endpoints
type BackfillHandler struct {
	BaseHandler
	backfillService *backfill.Service
}

// NewBackfillHandler creates a new BackfillHandler
func NewBackfillHandler(backfillService *backfill.Service) *BackfillHandler {
	return &BackfillHandler{backfillService: backfillService}
}

// RunBackfillRequest selects the backfill execution mode
// @Description Backfill run options
type RunBackfillRequest struct {
	DryRun bool `json:"dry_run" example:"true"`
}

// Run godoc
//
//	@Summary		Run the counterparty backfill
//	@Description	Scans transactions that still embed a raw counterparty identifier and links them to registry records. A dry run makes the same decisions without writing and returns an itemized report.
//	@Tags			backfill
//	@ID				runBackfill
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RunBackfillRequest	false	"Run options"
//	@Success		200		{object}	APIResponse[backfill.RunResult]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/backfill/runs [post]
func (h *BackfillHandler) Run(c *gin.Context) {
	var req RunBackfillRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	result, err := h.backfillService.Run(c.Request.Context(), req.DryRun)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}
