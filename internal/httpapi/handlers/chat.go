package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/talent-market/internal/common"
	"github.com/suPer8Hu/talent-market/internal/httpapi/middleware"
)

func (h *Handler) ListChatMessages(c *gin.Context) {
	msgs, err := h.Chat.Conversation(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, gin.H{"messages": msgs})
}

type sendMessageReq struct {
	Text string `json:"text" binding:"required"`
}

func (h *Handler) SendChatMessage(c *gin.Context) {
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	m, err := h.Chat.Send(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"), req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, m)
}
