package handler

import (
	"net/http"

	"anoa.com/kawansosial/internal/entity"
	reactionDto "anoa.com/kawansosial/internal/modules/reaction/dto"
	reaction "anoa.com/kawansosial/internal/modules/reaction/service"
	"anoa.com/kawansosial/pkg/response"
	"anoa.com/kawansosial/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReactionHandler struct {
	service reaction.ReactionService
}

func NewReactionHandler(service reaction.ReactionService) *ReactionHandler {
	return &ReactionHandler{service: service}
}

func (h *ReactionHandler) SetReaction(c *gin.Context) {
	var req reactionDto.SetReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.SetReaction(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ReactionHandler) GetReactions(c *gin.Context) {
	kind := c.Param("kind")
	if !entity.ValidSubjectKind(kind) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subject kind"})
		return
	}

	subjectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subject id"})
		return
	}

	var userIDPtr *uuid.UUID
	if userID, err := response.GetUserID(c); err == nil {
		userIDPtr = &userID
	}

	resp, err := h.service.GetReactions(c.Request.Context(), userIDPtr, kind, subjectID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
