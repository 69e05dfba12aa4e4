package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/http/response"
	"github.com/yungbote/quitbridge-backend/internal/services"
)

type TrackingHandler struct {
	tracking services.TrackingService
}

func NewTrackingHandler(tracking services.TrackingService) *TrackingHandler {
	return &TrackingHandler{tracking: tracking}
}

// POST /tracking/records
// record_date defaults to today (UTC).
func (h *TrackingHandler) CreateRecord(c *gin.Context) {
	var req struct {
		RecordDate       string `json:"record_date"`
		CigarettesSmoked *int   `json:"cigarettes_smoked"`
		BaselinePerDay   *int   `json:"baseline_per_day"`
		CravingsCount    int    `json:"cravings_count"`
		Mood             string `json:"mood"`
		Triggers         string `json:"triggers"`
		Notes            string `json:"notes"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.CigarettesSmoked == nil {
		response.RespondError(c, http.StatusBadRequest, "validation", errMissing("cigarettes_smoked"))
		return
	}
	day, err := dateParam(req.RecordDate)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	recordDate := time.Now().UTC()
	if day != nil {
		recordDate = *day
	}
	res, err := h.tracking.CreateRecord(c.Request.Context(), domainagg.ApplyRecordInput{
		RecordDate:       recordDate,
		CigarettesSmoked: *req.CigarettesSmoked,
		BaselinePerDay:   req.BaselinePerDay,
		CravingsCount:    req.CravingsCount,
		Mood:             req.Mood,
		Triggers:         req.Triggers,
		Notes:            req.Notes,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondCreated(c, ledgerPayload(res))
}

// PATCH /tracking/records/:id
func (h *TrackingHandler) UpdateRecord(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		CigarettesSmoked *int    `json:"cigarettes_smoked"`
		CravingsCount    *int    `json:"cravings_count"`
		Mood             *string `json:"mood"`
		Triggers         *string `json:"triggers"`
		Notes            *string `json:"notes"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.tracking.UpdateRecord(c.Request.Context(), domainagg.UpdateRecordInput{
		RecordID:         id,
		CigarettesSmoked: req.CigarettesSmoked,
		CravingsCount:    req.CravingsCount,
		Mood:             req.Mood,
		Triggers:         req.Triggers,
		Notes:            req.Notes,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, ledgerPayload(res))
}

// DELETE /tracking/records/:id
func (h *TrackingHandler) DeleteRecord(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.tracking.DeleteRecord(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true, "profile": res.Profile})
}

func ledgerPayload(res domainagg.LedgerResult) gin.H {
	return gin.H{
		"record":           res.Record,
		"profile":          res.Profile,
		"completed_goals":  res.CompletedGoals,
		"new_achievements": res.NewAchievements,
	}
}

// GET /tracking/records
func (h *TrackingHandler) ListRecords(c *gin.Context) {
	page := pageQuery(c)
	recs, total, err := h.tracking.ListRecords(c.Request.Context(), page)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"records": recs, "total": total})
}

// GET /tracking/records/:id
func (h *TrackingHandler) GetRecord(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	rec, err := h.tracking.GetRecord(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"record": rec})
}

// GET /tracking/today
// record is null when nothing was logged today.
func (h *TrackingHandler) Today(c *gin.Context) {
	rec, err := h.tracking.Today(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"record": rec, "has_record": rec != nil})
}

// GET /tracking/statistics?days=30
func (h *TrackingHandler) Statistics(c *gin.Context) {
	out, err := h.tracking.Statistics(c.Request.Context(), intQuery(c, "days", 0))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /tracking/trends
func (h *TrackingHandler) Trends(c *gin.Context) {
	out, err := h.tracking.Trends(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /dashboard
func (h *TrackingHandler) Dashboard(c *gin.Context) {
	out, err := h.tracking.Dashboard(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}
