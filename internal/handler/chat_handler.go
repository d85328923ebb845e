package handler

import (
	"errors"
	"net/http"

	"github.com/fitlink/fitlink-backend/internal/common"
	"github.com/fitlink/fitlink-backend/internal/domain"
	"github.com/fitlink/fitlink-backend/internal/middleware"
	"github.com/fitlink/fitlink-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ChatHandler handles inbox and thread HTTP requests
type ChatHandler struct {
	inbox   service.InboxService
	threads service.ThreadService
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(inbox service.InboxService, threads service.ThreadService) *ChatHandler {
	return &ChatHandler{inbox: inbox, threads: threads}
}

// GetInbox handles GET /chats
// @Summary Conversation list
// @Tags chat
// @Produce json
// @Success 200 {object} common.APIResponse{data=[]domain.ChatPreview}
// @Router /chats [get]
func (h *ChatHandler) GetInbox(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	entries, err := h.inbox.BuildInbox(userID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to load conversations", err)
		return
	}

	common.SuccessResponse(c, entries, nil)
}

// GetThread handles GET /chats/:username
// @Summary Open a thread with a member
// @Tags chat
// @Produce json
// @Param username path string true "Target member handle"
// @Success 200 {object} common.APIResponse{data=domain.ThreadResponse}
// @Router /chats/{username} [get]
func (h *ChatHandler) GetThread(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	thread, err := h.threads.Open(c.Request.Context(), userID, c.Param("username"))
	if err != nil {
		h.writeOpenError(c, err)
		return
	}
	defer thread.Close()

	if thread.HistoryError() != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to load message history", thread.HistoryError())
		return
	}

	common.SuccessResponse(c, thread.Snapshot(), nil)
}

// SendMessage handles POST /chats/:username/messages
// @Summary Send a message to a member
// @Tags chat
// @Accept json
// @Produce json
// @Param username path string true "Target member handle"
// @Param request body domain.SendMessageRequest true "Message body"
// @Success 201 {object} common.APIResponse{data=domain.MessageResponse}
// @Router /chats/{username}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Message body is required", err)
		return
	}

	thread, err := h.threads.Open(c.Request.Context(), userID, c.Param("username"))
	if err != nil {
		h.writeOpenError(c, err)
		return
	}
	defer thread.Close()

	msg, err := thread.Send(c.Request.Context(), req.Body)
	if err != nil {
		h.writeSendError(c, err)
		return
	}

	middleware.MessagesSentTotal.Inc()
	c.JSON(http.StatusCreated, common.APIResponse{Data: msg})
}

func (h *ChatHandler) writeOpenError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrMemberNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "Member not found", err)
	case errors.Is(err, common.ErrSelfConversation):
		common.ErrorResponse(c, http.StatusBadRequest, "Cannot message yourself", err)
	case errors.Is(err, common.ErrUnauthorized):
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", err)
	case errors.Is(err, common.ErrResolutionFailed):
		common.ErrorResponse(c, http.StatusBadGateway, "Conversation resolution failed", err)
	default:
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to open thread", err)
	}
}

func (h *ChatHandler) writeSendError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrBlockedBySelf):
		middleware.BlockedSendsTotal.Inc()
		common.ErrorResponse(c, http.StatusForbidden, "You have blocked this user. Unblock them to send messages.", err)
	case errors.Is(err, common.ErrBlockedByOther):
		middleware.BlockedSendsTotal.Inc()
		common.ErrorResponse(c, http.StatusForbidden, "This user has blocked you and you cannot send them messages.", err)
	case errors.Is(err, common.ErrEmptyMessage):
		common.ErrorResponse(c, http.StatusBadRequest, "Message body is empty", err)
	case errors.Is(err, common.ErrMessageTooLong):
		common.ErrorResponse(c, http.StatusBadRequest, "Message body exceeds the maximum length", err)
	case errors.Is(err, common.ErrGateUnavailable):
		common.ErrorResponse(c, http.StatusBadGateway, "Unable to verify messaging permissions", err)
	case errors.Is(err, common.ErrResolutionFailed):
		common.ErrorResponse(c, http.StatusBadGateway, "Conversation resolution failed", err)
	default:
		// Transient store failure: the client keeps the draft and retries
		common.ErrorResponse(c, http.StatusBadGateway, "Failed to send message", err)
	}
}
