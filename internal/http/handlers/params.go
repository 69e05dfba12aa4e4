package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/quitbridge-backend/internal/data/repos/query"
	"github.com/yungbote/quitbridge-backend/internal/http/response"
)

// uuidParam reads a path id, writing a 400 and returning false when it is malformed.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+name, errors.New(name+" must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string, def int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func boolQuery(c *gin.Context, name string) *bool {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// pageQuery accepts page/per_page, or limit/offset.
func pageQuery(c *gin.Context) query.Page {
	if c.Query("page") != "" || c.Query("per_page") != "" {
		return query.FromPageNumber(intQuery(c, "page", 1), intQuery(c, "per_page", 20))
	}
	return query.Page{Limit: intQuery(c, "limit", 0), Offset: intQuery(c, "offset", 0)}
}

// dateParam parses YYYY-MM-DD. Empty input yields nil.
func dateParam(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, errors.New("dates must be YYYY-MM-DD")
	}
	return &t, nil
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}

func errMissing(field string) error {
	return errors.New(field + " is required")
}
