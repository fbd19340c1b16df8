package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calyptra/units-backend/internal/middleware"
	"github.com/calyptra/units-backend/internal/services"
)

// LeaseHandler exposes lease registration and checkup. FQNs contain `#`, so
// they travel in bodies and query strings rather than path segments.
type LeaseHandler struct {
	leaseService services.LeaseService
}

func NewLeaseHandler(leaseService services.LeaseService) *LeaseHandler {
	return &LeaseHandler{leaseService: leaseService}
}

type registerCARequest struct {
	FQN string `json:"fqn" binding:"required"`
}

func (lh *LeaseHandler) Register(c *gin.Context) {
	var req registerCARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	expiry, err := lh.leaseService.RegisterCA(c.Request.Context(), middleware.Tenant(c), req.FQN)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"fqn": req.FQN, "expiry": expiry})
}

// Renew is the authenticated self-service path: the lease name comes from
// the instance's own capability token, not from the request body.
func (lh *LeaseHandler) Renew(c *gin.Context) {
	fqn := middleware.CAName(c)
	if fqn == "" {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	expiry, err := lh.leaseService.RegisterCA(c.Request.Context(), middleware.Tenant(c), fqn)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"fqn": fqn, "expiry": expiry})
}

func (lh *LeaseHandler) Check(c *gin.Context) {
	fqn := c.Query("fqn")
	if fqn == "" {
		RespondError(c, http.StatusBadRequest, "bad_request", nil)
		return
	}
	expiry, err := lh.leaseService.CheckCA(c.Request.Context(), middleware.Tenant(c), fqn)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"fqn": fqn, "expiry": expiry})
}

func (lh *LeaseHandler) Get(c *gin.Context) {
	fqn := c.Query("fqn")
	if fqn == "" {
		RespondError(c, http.StatusBadRequest, "bad_request", nil)
		return
	}
	lease, err := lh.leaseService.DescribeCA(c.Request.Context(), middleware.Tenant(c), fqn)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if lease == nil {
		RespondError(c, http.StatusNotFound, "lease_not_found", nil)
		return
	}
	RespondOK(c, lease)
}

func (lh *LeaseHandler) Unregister(c *gin.Context) {
	fqn := c.Query("fqn")
	if fqn == "" {
		RespondError(c, http.StatusBadRequest, "bad_request", nil)
		return
	}
	if err := lh.leaseService.UnregisterCA(c.Request.Context(), middleware.Tenant(c), fqn); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"ok": true})
}

func (lh *LeaseHandler) List(c *gin.Context) {
	leases, err := lh.leaseService.ListCAs(c.Request.Context(), middleware.Tenant(c), c.Query("owner"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"cas": leases})
}
