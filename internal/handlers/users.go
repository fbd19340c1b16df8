package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calyptra/units-backend/internal/middleware"
	"github.com/calyptra/units-backend/internal/services"
)

type UserHandler struct {
	ledgerService services.LedgerService
}

func NewUserHandler(ledgerService services.LedgerService) *UserHandler {
	return &UserHandler{ledgerService: ledgerService}
}

type registerUserRequest struct {
	Name string `json:"name" binding:"required"`
}

func (uh *UserHandler) Register(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := uh.ledgerService.RegisterUser(c.Request.Context(), middleware.Tenant(c), req.Name); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"name": req.Name})
}

func (uh *UserHandler) Get(c *gin.Context) {
	acct, err := uh.ledgerService.DescribeUser(c.Request.Context(), middleware.Tenant(c), c.Param("name"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if acct == nil {
		RespondError(c, http.StatusNotFound, "user_not_found", nil)
		return
	}
	RespondOK(c, gin.H{"name": acct.Name, "balance": acct.Balance})
}

func (uh *UserHandler) List(c *gin.Context) {
	users, err := uh.ledgerService.ListUsers(c.Request.Context(), middleware.Tenant(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"users": users})
}

type unitsRequest struct {
	Nonce string  `json:"nonce" binding:"required"`
	Units float64 `json:"units"`
}

func (uh *UserHandler) AddUnits(c *gin.Context) {
	var req unitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := uh.ledgerService.AddUnits(c.Request.Context(), middleware.Tenant(c), req.Nonce, c.Param("name"), req.Units); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"ok": true})
}

func (uh *UserHandler) RemoveUnits(c *gin.Context) {
	var req unitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := uh.ledgerService.RemoveUnits(c.Request.Context(), middleware.Tenant(c), req.Nonce, c.Param("name"), req.Units); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"ok": true})
}

func (uh *UserHandler) ChangeUnits(c *gin.Context) {
	var req unitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := uh.ledgerService.ChangeUnits(c.Request.Context(), middleware.Tenant(c), req.Nonce, c.Param("name"), req.Units); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"ok": true})
}

func (uh *UserHandler) Reputation(c *gin.Context) {
	rep, err := uh.ledgerService.DescribeReputation(c.Request.Context(), middleware.Tenant(c), c.Param("name"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if rep == nil {
		RespondError(c, http.StatusNotFound, "user_not_found", nil)
		return
	}
	RespondOK(c, rep)
}

func (uh *UserHandler) Audit(c *gin.Context) {
	trail, err := uh.ledgerService.AuditTrail(c.Request.Context(), middleware.Tenant(c), c.Param("name"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"audit": trail})
}

func (uh *UserHandler) Info(c *gin.Context) {
	info, err := uh.ledgerService.GetUserInfo(c.Request.Context(), middleware.Tenant(c), c.Param("name"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, info)
}

func (uh *UserHandler) Allocated(c *gin.Context) {
	total, err := uh.ledgerService.DescribeAllocated(c.Request.Context(), middleware.Tenant(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"allocated": total})
}
