package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/platform/apierr"
)

// StatusOf maps a service error to its HTTP status and wire code.
func StatusOf(err error) (int, string) {
	var api *apierr.Error
	if errors.As(err, &api) {
		return api.Status, api.Code
	}
	var agg *domainagg.Error
	if !errors.As(err, &agg) {
		return http.StatusInternalServerError, string(domainagg.CodeInternal)
	}
	switch agg.Code {
	case domainagg.CodeValidation, domainagg.CodeDuplicateRecord, domainagg.CodeInvalidStateTransition:
		return http.StatusBadRequest, string(agg.Code)
	case domainagg.CodeNotFound:
		return http.StatusNotFound, string(agg.Code)
	case domainagg.CodeConflict:
		return http.StatusConflict, string(agg.Code)
	case domainagg.CodePreconditionFailed:
		return http.StatusPreconditionFailed, string(agg.Code)
	case domainagg.CodeRetryable:
		return http.StatusServiceUnavailable, string(agg.Code)
	default:
		return http.StatusInternalServerError, string(agg.Code)
	}
}

// Fail writes err with the status StatusOf assigns. Server-side failures are
// reported without their cause.
func Fail(c *gin.Context, err error) {
	status, code := StatusOf(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		RespondError(c, status, code, errors.New(http.StatusText(status)))
		return
	}
	var agg *domainagg.Error
	if errors.As(err, &agg) && agg.Message != "" {
		RespondError(c, status, code, errors.New(agg.Message))
		return
	}
	RespondError(c, status, code, err)
}
