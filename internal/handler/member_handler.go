package handler

import (
	"errors"
	"net/http"

	"github.com/fitlink/fitlink-backend/internal/common"
	"github.com/fitlink/fitlink-backend/internal/repository"
	"github.com/gin-gonic/gin"
)

// MemberHandler handles profile directory HTTP requests
type MemberHandler struct {
	members repository.MemberRepository
}

// NewMemberHandler creates a new MemberHandler
func NewMemberHandler(members repository.MemberRepository) *MemberHandler {
	return &MemberHandler{members: members}
}

// GetByUsername handles GET /members/:username
// @Summary Resolve a member by handle
// @Tags member
// @Produce json
// @Param username path string true "Member handle"
// @Success 200 {object} common.APIResponse{data=domain.MemberResponse}
// @Router /members/{username} [get]
func (h *MemberHandler) GetByUsername(c *gin.Context) {
	member, err := h.members.FindByUsername(c.Param("username"))
	if err != nil {
		if errors.Is(err, common.ErrMemberNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "Member not found", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to load member", err)
		return
	}

	common.SuccessResponse(c, member.ToResponse(), nil)
}
