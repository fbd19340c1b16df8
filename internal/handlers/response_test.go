package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/calyptra/units-backend/internal/domain/usererr"
	"github.com/calyptra/units-backend/internal/platform/apierr"
)

func respondTo(t *testing.T, err error) (int, ErrorEnvelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondServiceError(c, err)
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return rec.Code, env
}

// An error carrying its own status and code is rendered verbatim, wrapped
// or not.
func TestRespondServiceErrorPinnedStatus(t *testing.T) {
	status, env := respondTo(t, apierr.New(http.StatusBadRequest, "invalid_plan", errors.New("no such plan")))
	if status != http.StatusBadRequest || env.Error.Code != "invalid_plan" {
		t.Fatalf("pinned error: got %d %q", status, env.Error.Code)
	}

	status, env = respondTo(t, fmt.Errorf("register app: %w", apierr.New(http.StatusBadRequest, "invalid_plan", nil)))
	if status != http.StatusBadRequest || env.Error.Code != "invalid_plan" {
		t.Fatalf("wrapped pinned error: got %d %q", status, env.Error.Code)
	}
}

func TestRespondServiceErrorTaxonomy(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{usererr.ErrInsufficientBalance, http.StatusPaymentRequired, "insufficient_balance"},
		{usererr.ErrUserMismatch, http.StatusForbidden, "user_mismatch"},
		{usererr.ErrTransferNotExpired, http.StatusConflict, "transfer_state"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		status, env := respondTo(t, tc.err)
		if status != tc.status || env.Error.Code != tc.code {
			t.Fatalf("%v: got %d %q, want %d %q", tc.err, status, env.Error.Code, tc.status, tc.code)
		}
	}
}
