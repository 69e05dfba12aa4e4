package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/domain/goals"
	"github.com/yungbote/quitbridge-backend/internal/http/response"
	"github.com/yungbote/quitbridge-backend/internal/services"
)

type GoalHandler struct {
	goals services.GoalService
}

func NewGoalHandler(goalService services.GoalService) *GoalHandler {
	return &GoalHandler{goals: goalService}
}

// POST /goals
func (h *GoalHandler) Create(c *gin.Context) {
	var req struct {
		GoalType    string `json:"goal_type"`
		TargetValue int    `json:"target_value"`
		StartDate   string `json:"start_date"`
		TargetDate  string `json:"target_date"`
		Description string `json:"description"`
	}
	if !bindJSON(c, &req) {
		return
	}
	start, err := dateParam(req.StartDate)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	target, err := dateParam(req.TargetDate)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	g, err := h.goals.Create(c.Request.Context(), domainagg.CreateGoalInput{
		GoalType:    req.GoalType,
		TargetValue: req.TargetValue,
		StartDate:   start,
		TargetDate:  target,
		Description: req.Description,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"goal": g})
}

// PATCH /goals/:id
func (h *GoalHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		TargetValue *int    `json:"target_value"`
		TargetDate  string  `json:"target_date"`
		Description *string `json:"description"`
	}
	if !bindJSON(c, &req) {
		return
	}
	target, err := dateParam(req.TargetDate)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	res, err := h.goals.Update(c.Request.Context(), domainagg.UpdateGoalInput{
		GoalRef:     domainagg.GoalRef{GoalID: id},
		TargetValue: req.TargetValue,
		TargetDate:  target,
		Description: req.Description,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, goalPayload(res))
}

// POST /goals/:id/progress
func (h *GoalHandler) UpdateProgress(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		CurrentValue *int `json:"current_value"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.CurrentValue == nil {
		response.RespondError(c, http.StatusBadRequest, "validation", errMissing("current_value"))
		return
	}
	res, err := h.goals.UpdateProgress(c.Request.Context(), id, *req.CurrentValue)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, goalPayload(res))
}

func (h *GoalHandler) Complete(c *gin.Context) { h.transition(c, h.goals.Complete) }
func (h *GoalHandler) Pause(c *gin.Context) { h.transition(c, h.goals.Pause) }
func (h *GoalHandler) Resume(c *gin.Context) { h.transition(c, h.goals.Resume) }
func (h *GoalHandler) Fail(c *gin.Context) { h.transition(c, h.goals.Fail) }
func (h *GoalHandler) MarkNotified(c *gin.Context) { h.transition(c, h.goals.MarkNotified) }

func (h *GoalHandler) transition(c *gin.Context, fn func(context.Context, uuid.UUID) (domainagg.GoalResult, error)) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := fn(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, goalPayload(res))
}

func goalPayload(res domainagg.GoalResult) gin.H {
	return gin.H{
		"goal":             res.Goal,
		"completed":        res.Completed,
		"new_achievements": res.NewAchievements,
	}
}

// DELETE /goals/:id
func (h *GoalHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.goals.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

// GET /goals?status=&goal_type=
func (h *GoalHandler) List(c *gin.Context) {
	h.list(c, repos.GoalFilter{Status: c.Query("status"), GoalType: c.Query("goal_type")})
}

// GET /goals/active
func (h *GoalHandler) Active(c *gin.Context) {
	h.list(c, repos.GoalFilter{Status: goals.StatusActive, GoalType: c.Query("goal_type")})
}

// GET /goals/completed
func (h *GoalHandler) Completed(c *gin.Context) {
	h.list(c, repos.GoalFilter{Status: goals.StatusCompleted, GoalType: c.Query("goal_type")})
}

func (h *GoalHandler) list(c *gin.Context, f repos.GoalFilter) {
	out, err := h.goals.List(c.Request.Context(), f)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"goals": out, "count": len(out)})
}

// GET /goals/:id
func (h *GoalHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	g, err := h.goals.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"goal": g})
}

// GET /goals/statistics
func (h *GoalHandler) Statistics(c *gin.Context) {
	st, err := h.goals.Statistics(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, st)
}
