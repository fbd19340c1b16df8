package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calyptra/units-backend/internal/middleware"
	"github.com/calyptra/units-backend/internal/services"
)

type TransferHandler struct {
	transferService services.TransferService
}

func NewTransferHandler(transferService services.TransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

type createTransferRequest struct {
	Nonce string  `json:"nonce" binding:"required"`
	From  string  `json:"from" binding:"required"`
	To    string  `json:"to" binding:"required"`
	Units float64 `json:"units" binding:"required"`
	ID    string  `json:"id" binding:"required"`
}

func (th *TransferHandler) Create(c *gin.Context) {
	var req createTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	err := th.transferService.TransferUnits(c.Request.Context(), middleware.Tenant(c), req.Nonce, req.From, req.To, req.Units, req.ID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"id": req.ID})
}

type transferActorRequest struct {
	Actor string `json:"actor" binding:"required"`
	NowMs int64  `json:"now_ms"`
}

func (th *TransferHandler) Release(c *gin.Context) {
	var req transferActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := th.transferService.ReleaseTransfer(c.Request.Context(), middleware.Tenant(c), req.Actor, c.Param("id")); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"ok": true})
}

func (th *TransferHandler) Accept(c *gin.Context) {
	var req transferActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := th.transferService.AcceptTransfer(c.Request.Context(), middleware.Tenant(c), req.Actor, c.Param("id")); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"ok": true})
}

func (th *TransferHandler) Dispute(c *gin.Context) {
	var req transferActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := th.transferService.DisputeTransfer(c.Request.Context(), middleware.Tenant(c), req.Actor, c.Param("id")); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"ok": true})
}

func (th *TransferHandler) Expire(c *gin.Context) {
	var req transferActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := th.transferService.ExpireTransfer(c.Request.Context(), middleware.Tenant(c), req.Actor, c.Param("id"), req.NowMs); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"ok": true})
}

func (th *TransferHandler) Get(c *gin.Context) {
	rec, err := th.transferService.DescribeTransfer(c.Request.Context(), middleware.Tenant(c), c.Param("id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if rec == nil {
		RespondError(c, http.StatusNotFound, "transfer_not_found", nil)
		return
	}
	RespondOK(c, rec)
}

func (th *TransferHandler) Offers(c *gin.Context) {
	offers, err := th.transferService.ListOffers(c.Request.Context(), middleware.Tenant(c), c.Param("user"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"offers": offers})
}

func (th *TransferHandler) Accepts(c *gin.Context) {
	accepts, err := th.transferService.ListAccepts(c.Request.Context(), middleware.Tenant(c), c.Param("user"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"accepts": accepts})
}
