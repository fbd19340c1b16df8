package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calyptra/units-backend/internal/domain/usererr"
	"github.com/calyptra/units-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondServiceError maps the engine's failure taxonomy onto HTTP statuses.
func RespondServiceError(c *gin.Context, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		RespondError(c, ae.Status, ae.Code, ae.Err)
		return
	}
	switch {
	case errors.Is(err, usererr.ErrInvalidName):
		RespondError(c, http.StatusBadRequest, "invalid_name", err)
	case errors.Is(err, usererr.ErrUserNotFound):
		RespondError(c, http.StatusNotFound, "user_not_found", err)
	case errors.Is(err, usererr.ErrAppNotFound):
		RespondError(c, http.StatusNotFound, "app_not_found", err)
	case errors.Is(err, usererr.ErrLeaseNotFound):
		RespondError(c, http.StatusNotFound, "lease_not_found", err)
	case errors.Is(err, usererr.ErrInsufficientBalance):
		RespondError(c, http.StatusPaymentRequired, "insufficient_balance", err)
	case errors.Is(err, usererr.ErrUserMismatch):
		RespondError(c, http.StatusForbidden, "user_mismatch", err)
	case errors.Is(err, usererr.ErrTransferNotReleased),
		errors.Is(err, usererr.ErrAlreadyReleased),
		errors.Is(err, usererr.ErrTransferNotExpired):
		RespondError(c, http.StatusConflict, "transfer_state", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}
