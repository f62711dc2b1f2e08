package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/souqna/marketplace/internal/api/dto"
	"github.com/souqna/marketplace/internal/auth"
	"github.com/souqna/marketplace/internal/service"
	apperrors "github.com/souqna/marketplace/pkg/util"
)

// BlocksHandler manages the caller's block list.
type BlocksHandler struct {
	blocks *service.BlockService
}

// NewBlocksHandler constructs handler.
func NewBlocksHandler(blocks *service.BlockService) *BlocksHandler {
	return &BlocksHandler{blocks: blocks}
}

// List GET /api/blocks.
func (h *BlocksHandler) List(c *fiber.Ctx) error {
	blocks, err := h.blocks.List(c.UserContext(), auth.OptionalIdentity(c))
	if err != nil {
		return err
	}
	items := make([]dto.BlockResponse, 0, len(blocks))
	for _, b := range blocks {
		items = append(items, dto.BlockResponse{UserID: b.UserID, CreatedAt: b.CreatedAt})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Block POST /api/blocks.
func (h *BlocksHandler) Block(c *fiber.Ctx) error {
	var req dto.BlockRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if _, err := uuid.Parse(strings.TrimSpace(req.UserID)); err != nil {
		return apperrors.NewValidationError("invalid user id", map[string]any{"field": "userId"})
	}
	block, err := h.blocks.Block(c.UserContext(), auth.OptionalIdentity(c), req.UserID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.BlockResponse{UserID: block.UserID, CreatedAt: block.CreatedAt},
	})
}

// Unblock DELETE /api/blocks/:userId.
func (h *BlocksHandler) Unblock(c *fiber.Ctx) error {
	userID, err := pathID(c, "userId", "block")
	if err != nil {
		return err
	}
	if err := h.blocks.Unblock(c.UserContext(), auth.OptionalIdentity(c), userID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
