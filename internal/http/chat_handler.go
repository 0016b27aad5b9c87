package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"plotchat/internal/service"
)

// SessionIDHeader informa al cliente la sesion que recibio el mensaje.
const SessionIDHeader = "X-Session-ID"

// ChatHandler mantiene dependencias para endpoints de sesiones y mensajes.
type ChatHandler struct {
	logger       *zap.Logger
	sentenceServ *service.SentenceService
}

// NewChatHandler crea una instancia de ChatHandler con dependencias necesarias.
func NewChatHandler(logger *zap.Logger, sentenceServ *service.SentenceService) *ChatHandler {
	return &ChatHandler{
		logger:       logger,
		sentenceServ: sentenceServ,
	}
}

// ListSessions maneja GET /sessions/.
func (h *ChatHandler) ListSessions(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	sessions, err := h.sentenceServ.ListSessions(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list sessions failed", zap.Error(err), zap.String("user_id", claims.UserID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list sessions"})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GetSession maneja GET /sessions/:id/.
func (h *ChatHandler) GetSession(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.logger.Warn("invalid session id", zap.String("id", c.Param("id")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	sess, err := h.sentenceServ.GetSession(c.Request.Context(), claims.UserID, id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		h.logger.Error("get session failed", zap.Error(err), zap.Int64("session_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get session"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// GenerateSentence maneja POST /generate-sentence/. La respuesta es un string JSON.
func (h *ChatHandler) GenerateSentence(c *gin.Context) {
	var req struct {
		Input        *string `json:"input"`
		SessionID    *int64  `json:"session_id"`
		SessionTitle *string `json:"session_title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid generate request", zap.Error(err))
		if errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Request body is empty"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.Input == nil {
		h.logger.Warn("generate request without input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'input' key in request body"})
		return
	}

	claims, _ := GetAuthClaims(c)
	res, err := h.sentenceServ.Generate(c.Request.Context(), claims.UserID, service.SentenceRequest{
		Input:        *req.Input,
		SessionID:    req.SessionID,
		SessionTitle: req.SessionTitle,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Input text is empty"})
		case errors.Is(err, service.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		default:
			h.logger.Error("generate sentence failed", zap.Error(err), zap.String("user_id", claims.UserID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate sentence"})
		}
		return
	}

	c.Header(SessionIDHeader, strconv.FormatInt(res.SessionID, 10))
	c.JSON(http.StatusOK, res.Reply)
}
