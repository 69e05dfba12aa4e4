package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/domain/user"
	"github.com/yungbote/quitbridge-backend/internal/platform/apierr"
	"github.com/yungbote/quitbridge-backend/internal/platform/ctxutil"
)

var (
	ErrUnauthorized       = apierr.New(http.StatusUnauthorized, "unauthorized", errors.New("unauthorized"))
	ErrForbidden          = apierr.New(http.StatusForbidden, "forbidden", errors.New("admin role required"))
	ErrInvalidCredentials = apierr.New(http.StatusUnauthorized, "invalid_credentials", errors.New("invalid email or password"))
	ErrSessionExpired     = apierr.New(http.StatusUnauthorized, "session_expired", errors.New("refresh token expired"))
)

// requestUser returns the authenticated caller's id.
func requestUser(ctx context.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, ErrUnauthorized
	}
	return rd.UserID, nil
}

func requireAdmin(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return ErrUnauthorized
	}
	if rd.Role != user.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

func validationErr(op, msg string) error {
	return domainagg.NewError(domainagg.CodeValidation, op, msg, nil)
}

func notFoundErr(op, msg string) error {
	return domainagg.NewError(domainagg.CodeNotFound, op, msg, nil)
}

func internalErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) {
		return err
	}
	return domainagg.NewError(domainagg.CodeInternal, op, "query failed", err)
}
