package handlers

import (
	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/http/response"
	"github.com/yungbote/quitbridge-backend/internal/services"
)

type ProfileHandler struct {
	profiles services.ProfileService
}

func NewProfileHandler(profiles services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GET /profile
func (h *ProfileHandler) Get(c *gin.Context) {
	p, err := h.profiles.GetProfile(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"profile": p})
}

// PUT /profile
// Omitted fields keep their current value.
func (h *ProfileHandler) Setup(c *gin.Context) {
	var req struct {
		CigarettesPerDay *int    `json:"cigarettes_per_day"`
		SmokingStartAge  *int    `json:"smoking_start_age"`
		SmokingYears     *int    `json:"smoking_years"`
		QuitAttempts     *int    `json:"quit_attempts"`
		MotivationLevel  *string `json:"motivation_level"`
		QuitReason       *string `json:"quit_reason"`
		HealthConditions *string `json:"health_conditions"`
	}
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.profiles.SetupProfile(c.Request.Context(), domainagg.SetupProfileInput{
		CigarettesPerDay: req.CigarettesPerDay,
		SmokingStartAge:  req.SmokingStartAge,
		SmokingYears:     req.SmokingYears,
		QuitAttempts:     req.QuitAttempts,
		MotivationLevel:  req.MotivationLevel,
		QuitReason:       req.QuitReason,
		HealthConditions: req.HealthConditions,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"profile": p})
}
