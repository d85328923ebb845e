package handler

import (
	"errors"
	"net/http"

	"github.com/fitlink/fitlink-backend/internal/common"
	"github.com/fitlink/fitlink-backend/internal/middleware"
	"github.com/fitlink/fitlink-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// BlockHandler handles member block HTTP requests
type BlockHandler struct {
	service service.BlockService
}

// NewBlockHandler creates a new BlockHandler
func NewBlockHandler(service service.BlockService) *BlockHandler {
	return &BlockHandler{service: service}
}

// BlockMember handles POST /blocks/:user_id
// @Summary Block a member
// @Tags block
// @Produce json
// @Param user_id path string true "Member ID to block"
// @Success 200 {object} common.APIResponse{data=domain.BlockResponse}
// @Router /blocks/{user_id} [post]
func (h *BlockHandler) BlockMember(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	targetID := c.Param("user_id")
	if targetID == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "Target member ID is required", nil)
		return
	}

	result, err := h.service.BlockMember(c.Request.Context(), userID, targetID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrMemberNotFound):
			common.ErrorResponse(c, http.StatusNotFound, "Member not found", err)
		case errors.Is(err, common.ErrAlreadyBlocked):
			common.ErrorResponse(c, http.StatusConflict, "Member is already blocked", err)
		default:
			common.ErrorResponse(c, http.StatusBadRequest, err.Error(), err)
		}
		return
	}

	common.SuccessResponse(c, result, nil)
}

// UnblockMember handles DELETE /blocks/:user_id
// @Summary Unblock a member
// @Tags block
// @Produce json
// @Param user_id path string true "Member ID to unblock"
// @Success 204
// @Router /blocks/{user_id} [delete]
func (h *BlockHandler) UnblockMember(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	targetID := c.Param("user_id")
	if err := h.service.UnblockMember(c.Request.Context(), userID, targetID); err != nil {
		if errors.Is(err, common.ErrBlockNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "Block record not found", err)
			return
		}
		common.ErrorResponse(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListBlocks handles GET /blocks
// @Summary List blocked members
// @Tags block
// @Produce json
// @Success 200 {object} common.APIResponse{data=[]domain.BlockResponse}
// @Router /blocks [get]
func (h *BlockHandler) ListBlocks(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	blocks, err := h.service.ListBlocks(userID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to load block list", err)
		return
	}

	common.SuccessResponse(c, blocks, nil)
}
