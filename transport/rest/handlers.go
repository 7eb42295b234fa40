package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/caro-backend/internal/apperror"
)

func (that *Server) ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

// getRoom - returns the public view of a room.
func (that *Server) getRoom(c *gin.Context) {
	room, err := that.registry.GetRoom(c.Request.Context(), c.Param("code"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, room.View())
	case errors.Is(err, apperror.ErrInvalidRoomCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room code", "reason": apperror.ReasonValidation})
	case errors.Is(err, apperror.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found", "reason": apperror.ReasonRoomNotFound})
	default:
		that.logger.Error("failed to get room", "code", c.Param("code"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "reason": apperror.ReasonInternal})
	}
}

func (that *Server) stats(c *gin.Context) {
	stats, err := that.registry.Stats(c.Request.Context())
	if err != nil {
		that.logger.Error("failed to collect stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "reason": apperror.ReasonInternal})
		return
	}

	c.JSON(http.StatusOK, stats)
}
