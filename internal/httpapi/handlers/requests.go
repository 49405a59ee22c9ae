package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/talent-market/internal/common"
	"github.com/suPer8Hu/talent-market/internal/httpapi/middleware"
	"github.com/suPer8Hu/talent-market/internal/request"
)

type createRequestReq struct {
	ProviderID uint64 `json:"provider_id" binding:"required"`
	Message    string `json:"message"`
}

func (h *Handler) CreateRequest(c *gin.Context) {
	var req createRequestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	cr, err := h.Requests.Create(c.Request.Context(), middleware.SessionFrom(c), req.ProviderID, req.Message)
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, cr)
}

func (h *Handler) MyRequests(c *gin.Context) {
	list, err := h.Requests.ListForUser(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, list)
}

type incomingQuery struct {
	Status string `form:"status"`
}

func (h *Handler) IncomingRequests(c *gin.Context) {
	var q incomingQuery
	_ = c.ShouldBindQuery(&q)
	sess := middleware.SessionFrom(c)
	list, counts, err := h.Requests.ListForProvider(c.Request.Context(), sess, request.Status(q.Status))
	if err != nil {
		h.fail(c, err)
		return
	}
	views, err := h.Providers.ViewCount(c.Request.Context(), sess.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, gin.H{"requests": list, "counts": counts, "profile_views": views})
}

func (h *Handler) GetRequest(c *gin.Context) {
	cr, err := h.Requests.Get(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, cr)
}

func (h *Handler) AcceptRequest(c *gin.Context) {
	cr, err := h.Requests.Accept(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, cr)
}

func (h *Handler) RejectRequest(c *gin.Context) {
	cr, err := h.Requests.Reject(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, cr)
}
