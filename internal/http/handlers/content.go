package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/http/response"
	"github.com/yungbote/quitbridge-backend/internal/services"
)

type ContentHandler struct {
	content services.ContentService
}

func NewContentHandler(content services.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

// GET /content?category=&language=&content_type=
func (h *ContentHandler) List(c *gin.Context) {
	f := repos.ContentFilter{
		Category:    c.Query("category"),
		Language:    c.Query("language"),
		ContentType: c.Query("content_type"),
	}
	out, total, err := h.content.List(c.Request.Context(), f, pageQuery(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"content": out, "total": total})
}

// GET /content/:id
func (h *ContentHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	item, err := h.content.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"content": item})
}

// POST /content/:id/progress
func (h *ContentHandler) RecordProgress(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		ProgressPercentage *int  `json:"progress_percentage"`
		Completed          *bool `json:"completed"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.content.RecordProgress(c.Request.Context(), domainagg.RecordContentProgressInput{
		ContentID:          id,
		ProgressPercentage: req.ProgressPercentage,
		Completed:          req.Completed,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"progress":         res.Progress,
		"newly_completed":  res.NewlyCompleted,
		"new_achievements": res.NewAchievements,
	})
}

// GET /content/progress
func (h *ContentHandler) UserProgress(c *gin.Context) {
	out, err := h.content.UserProgress(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": out})
}

// POST /admin/content
func (h *ContentHandler) Create(c *gin.Context) {
	var req struct {
		Title       string `json:"title"`
		ContentType string `json:"content_type"`
		ContentText string `json:"content_text"`
		ContentURL  string `json:"content_url"`
		Category    string `json:"category"`
		Language    string `json:"language"`
		ReadingTime int    `json:"reading_time"`
		IsPublished bool   `json:"is_published"`
	}
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.content.Create(c.Request.Context(), services.CreateContentInput{
		Title:       req.Title,
		ContentType: req.ContentType,
		ContentText: req.ContentText,
		ContentURL:  req.ContentURL,
		Category:    req.Category,
		Language:    req.Language,
		ReadingTime: req.ReadingTime,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"content": item})
}

// GET /content/statistics
func (h *ContentHandler) Statistics(c *gin.Context) {
	out, err := h.content.Statistics(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"statistics": out})
}

// GET /content/recommended
func (h *ContentHandler) Recommended(c *gin.Context) {
	out, err := h.content.Recommended(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"recommended": out, "total": len(out)})
}

// GET /content/search?q=
func (h *ContentHandler) Search(c *gin.Context) {
	q := c.Query("q")
	out, err := h.content.Search(c.Request.Context(), q)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"query": q, "results": out, "total": len(out)})
}

// PUT /admin/content/:id
func (h *ContentHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Title       *string `json:"title"`
		ContentType *string `json:"content_type"`
		ContentText *string `json:"content_text"`
		ContentURL  *string `json:"content_url"`
		Category    *string `json:"category"`
		Language    *string `json:"language"`
		ReadingTime *int    `json:"reading_time"`
		IsPublished *bool   `json:"is_published"`
	}
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.content.Update(c.Request.Context(), id, services.UpdateContentInput{
		Title:       req.Title,
		ContentType: req.ContentType,
		ContentText: req.ContentText,
		ContentURL:  req.ContentURL,
		Category:    req.Category,
		Language:    req.Language,
		ReadingTime: req.ReadingTime,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"content": item})
}

// DELETE /admin/content/:id
func (h *ContentHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.content.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "content deleted"})
}
