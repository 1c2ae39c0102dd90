package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go-inventory-agent/internal/middleware"
	"go-inventory-agent/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AskRequest struct {
	Session string `json:"session"`
	Message string `json:"message" binding:"required"`
}

type PendingRequest struct {
	Session      string `json:"session" binding:"required"`
	SupplierName string `json:"supplier_name"`
}

// loadSession returns the caller's session, starting a new one when token is
// empty. A token that belongs to another user is treated as unknown.
func (h *Handler) loadSession(ctx context.Context, c *gin.Context, token string) (*session.Session, error) {
	uid := c.GetUint(middleware.UserIDKey)
	if token == "" {
		return h.Sessions.Create(ctx, uid)
	}
	sess, err := h.Sessions.Load(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess.UserID != uid {
		return nil, session.ErrNotFound
	}
	return sess, nil
}

func (h *Handler) saveSession(ctx context.Context, sess *session.Session) {
	if err := h.Sessions.Save(ctx, sess); err != nil {
		h.log().Error("saving assistant session", zap.Error(err))
	}
}

// bindAsk reads an AskRequest, rejecting blank messages before any session
// is created for them.
func bindAsk(c *gin.Context) (AskRequest, bool) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Message is required")
		return req, false
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		badRequest(c, "Message is required")
		return req, false
	}
	return req, true
}

// AskAI runs one assistant turn and returns the reply with any chart, draft
// or purchase order it produced.
func (h *Handler) AskAI(c *gin.Context) {
	req, ok := bindAsk(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	sess, err := h.loadSession(ctx, c, req.Session)
	if err != nil {
		h.respondError(c, err)
		return
	}

	turn, err := h.Assistant.Chat(ctx, sess, req.Message)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.saveSession(ctx, sess)
	c.JSON(http.StatusOK, gin.H{"session": sess.Token, "turn": turn})
}

// StreamAI sends the reply as server-sent events: "session" first, then
// "chunk" events, then one "done" event carrying the finished turn.
func (h *Handler) StreamAI(c *gin.Context) {
	req, ok := bindAsk(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	sess, err := h.loadSession(ctx, c, req.Session)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.SSEvent("session", sess.Token)
	c.Writer.Flush()

	turn, err := h.Assistant.ChatStream(ctx, sess, req.Message, func(chunk string) error {
		c.SSEvent("chunk", chunk)
		c.Writer.Flush()
		return ctx.Err()
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			h.log().Warn("assistant stream aborted", zap.Error(err))
			c.SSEvent("error", err.Error())
		}
		return
	}
	h.saveSession(ctx, sess)
	c.SSEvent("done", turn)
	c.Writer.Flush()
}

// ResolvePending finishes a purchase order that was waiting for a supplier.
func (h *Handler) ResolvePending(c *gin.Context) {
	var req PendingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "session is required")
		return
	}
	ctx := c.Request.Context()
	sess, err := h.loadSession(ctx, c, req.Session)
	if err != nil {
		h.respondError(c, err)
		return
	}
	po, err := h.Assistant.ResolvePending(ctx, sess, req.SupplierName)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.saveSession(ctx, sess)
	c.JSON(http.StatusCreated, po)
}

func (h *Handler) CancelPending(c *gin.Context) {
	ctx := c.Request.Context()
	sess, err := h.loadSession(ctx, c, c.Param("token"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Assistant.CancelPending(sess); err != nil {
		h.respondError(c, err)
		return
	}
	h.saveSession(ctx, sess)
	c.JSON(http.StatusOK, gin.H{"message": "Pending action cancelled"})
}

// GetSession returns the chat history and any pending action.
func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.loadSession(c.Request.Context(), c, c.Param("token"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) DeleteSession(c *gin.Context) {
	ctx := c.Request.Context()
	sess, err := h.loadSession(ctx, c, c.Param("token"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Sessions.Delete(ctx, sess.Token); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session cleared"})
}
