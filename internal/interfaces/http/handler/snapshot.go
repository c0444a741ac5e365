package handler

import (
	"strconv"
	"time"

	snapshotapp "github.com/finbook/backend/internal/application/snapshot"
	"github.com/finbook/backend/internal/domain/snapshot"
	"github.com/gin-gonic/gin"
)

// SnapshotHandler handles monthly balance snapshot API endpoints
type SnapshotHandler struct {
	BaseHandler
	snapshotService *snapshotapp.BalanceSnapshotService
}

// NewSnapshotHandler creates a new SnapshotHandler
func NewSnapshotHandler(snapshotService *snapshotapp.BalanceSnapshotService) *SnapshotHandler {
	return &SnapshotHandler{snapshotService: snapshotService}
}

// GeneratePeriodRequest selects the month to generate a snapshot for
// @Description Period selection for snapshot generation
type GeneratePeriodRequest struct {
	Year  int `json:"year" binding:"required,min=1900,max=2200" example:"2025"`
	Month int `json:"month" binding:"required,min=1,max=12" example:"7"`
}

// SnapshotRangeQuery bounds a snapshot listing to an inclusive period range
type SnapshotRangeQuery struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}

// ListRange godoc
// @Summary      List balance snapshots
// @Description  Retrieve monthly balance snapshots within an inclusive period range
// @Tags         snapshots
// @Produce      json
// @Param        from query string true "Range start period (YYYY-MM)"
// @Param        to query string true "Range end period (YYYY-MM)"
// @Success      200 {object} dto.Response{data=[]snapshotapp.BalanceSnapshotResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /snapshots [get]
func (h *SnapshotHandler) ListRange(c *gin.Context) {
	var query SnapshotRangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	from, err := parsePeriod(query.From)
	if err != nil {
		h.BadRequest(c, "Invalid from period, expected YYYY-MM")
		return
	}
	to, err := parsePeriod(query.To)
	if err != nil {
		h.BadRequest(c, "Invalid to period, expected YYYY-MM")
		return
	}

	snapshots, err := h.snapshotService.ListRange(c.Request.Context(), from, to)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, snapshots)
}

// GetByPeriod godoc
// @Summary      Get a balance snapshot
// @Description  Retrieve the balance snapshot of a single calendar month
// @Tags         snapshots
// @Produce      json
// @Param        year path int true "Period year"
// @Param        month path int true "Period month (1-12)"
// @Success      200 {object} dto.Response{data=snapshotapp.BalanceSnapshotResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /snapshots/{year}/{month} [get]
func (h *SnapshotHandler) GetByPeriod(c *gin.Context) {
	period, ok := h.periodFromPath(c)
	if !ok {
		return
	}

	snap, err := h.snapshotService.GetByPeriod(c.Request.Context(), period)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, snap)
}

// Generate godoc
// @Summary      Generate a balance snapshot
// @Description  Compute and store the balance snapshot for the given month, replacing any existing one
// @Tags         snapshots
// @Accept       json
// @Produce      json
// @Param        request body GeneratePeriodRequest true "Period to generate"
// @Success      200 {object} dto.Response{data=snapshotapp.BalanceSnapshotResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /snapshots/generate [post]
func (h *SnapshotHandler) Generate(c *gin.Context) {
	var req GeneratePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	period, err := snapshot.NewPeriod(req.Year, time.Month(req.Month))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	snap, err := h.snapshotService.GenerateForPeriod(c.Request.Context(), period)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, snap)
}

// Refresh godoc
// @Summary      Refresh recent balance snapshots
// @Description  Regenerate the snapshots of the current and previous month
// @Tags         snapshots
// @Produce      json
// @Success      200 {object} dto.Response{data=[]snapshotapp.BalanceSnapshotResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /snapshots/refresh [post]
func (h *SnapshotHandler) Refresh(c *gin.Context) {
	snapshots, err := h.snapshotService.RefreshRecent(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, snapshots)
}

// Cleanup godoc
// @Summary      Remove old balance snapshots
// @Description  Delete snapshots older than the configured retention window
// @Tags         snapshots
// @Produce      json
// @Success      200 {object} dto.Response{data=CountData}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /snapshots/cleanup [post]
func (h *SnapshotHandler) Cleanup(c *gin.Context) {
	count, err := h.snapshotService.CleanupOld(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, CountData{Count: count})
}

// periodFromPath parses the year and month path params, responding with a
// 400 and returning ok=false when they do not form a valid period.
func (h *SnapshotHandler) periodFromPath(c *gin.Context) (snapshot.Period, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		h.BadRequest(c, "Invalid year format")
		return snapshot.Period{}, false
	}

	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		h.BadRequest(c, "Invalid month format")
		return snapshot.Period{}, false
	}

	period, err := snapshot.NewPeriod(year, time.Month(month))
	if err != nil {
		h.HandleDomainError(c, err)
		return snapshot.Period{}, false
	}

	return period, true
}

// parsePeriod parses a YYYY-MM period string.
func parsePeriod(value string) (snapshot.Period, error) {
	parsed, err := time.Parse("2006-01", value)
	if err != nil {
		return snapshot.Period{}, err
	}
	return snapshot.PeriodOf(parsed), nil
}
