package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/quitbridge-backend/internal/http/response"
	"github.com/yungbote/quitbridge-backend/internal/services"
)

type AchievementHandler struct {
	achievements services.AchievementService
}

func NewAchievementHandler(achievements services.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievements: achievements}
}

// GET /achievements?badge_type=
func (h *AchievementHandler) Catalog(c *gin.Context) {
	out, err := h.achievements.Catalog(c.Request.Context(), c.Query("badge_type"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"achievements": out, "count": len(out)})
}

// GET /achievements/:id
func (h *AchievementHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	a, err := h.achievements.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"achievement": a})
}

// GET /achievements/:id/badge.png
func (h *AchievementHandler) Badge(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	buf, err := h.achievements.Badge(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// GET /achievements/earned
func (h *AchievementHandler) Earned(c *gin.Context) {
	out, err := h.achievements.Earned(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /achievements/available
func (h *AchievementHandler) Available(c *gin.Context) {
	out, err := h.achievements.Available(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"achievements": out, "count": len(out)})
}

// GET /achievements/progress
func (h *AchievementHandler) Progress(c *gin.Context) {
	out, err := h.achievements.Progress(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": out})
}

// GET /achievements/statistics
func (h *AchievementHandler) Statistics(c *gin.Context) {
	out, err := h.achievements.Statistics(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /achievements/leaderboard?limit=10
func (h *AchievementHandler) Leaderboard(c *gin.Context) {
	out, err := h.achievements.Leaderboard(c.Request.Context(), intQuery(c, "limit", 0))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"leaderboard": out})
}

// POST /achievements/check
func (h *AchievementHandler) Check(c *gin.Context) {
	res, err := h.achievements.Check(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"new_achievements": res.Unlocked, "count": len(res.Unlocked)})
}

// POST /admin/achievements
func (h *AchievementHandler) Create(c *gin.Context) {
	var req struct {
		Name          string `json:"name"`
		Description   string `json:"description"`
		IconURL       string `json:"icon_url"`
		BadgeType     string `json:"badge_type"`
		CriteriaType  string `json:"criteria_type"`
		CriteriaValue int    `json:"criteria_value"`
		Points        int    `json:"points"`
	}
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.achievements.Create(c.Request.Context(), services.CreateAchievementInput{
		Name:          req.Name,
		Description:   req.Description,
		IconURL:       req.IconURL,
		BadgeType:     req.BadgeType,
		CriteriaType:  req.CriteriaType,
		CriteriaValue: req.CriteriaValue,
		Points:        req.Points,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"achievement": a})
}
