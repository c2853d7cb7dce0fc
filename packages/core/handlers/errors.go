package handlers

import (
	"errors"
	"net/http"

	"afl-api/packages/core/models"
	"afl-api/packages/core/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

var (
	notFoundErrors = []error{
		services.ErrPlayerNotFound,
		services.ErrTeamNotFound,
		services.ErrGameNotFound,
		services.ErrNoOpenGame,
	}
	conflictErrors = []error{
		services.ErrPlayerAlreadyExists,
		services.ErrGameNotEnded,
		models.ErrGameEnded,
	}
	badRequestErrors = []error{
		services.ErrInvalidPlayerName,
		services.ErrSameTeam,
		services.ErrInvalidTimestamp,
		services.ErrInvalidScore,
		models.ErrInvalidSide,
		models.ErrInvalidGoalValue,
		models.ErrInvalidSubject,
	}
)

func statusFor(err error) int {
	for _, group := range []struct {
		status int
		errs   []error
	}{
		{http.StatusNotFound, notFoundErrors},
		{http.StatusConflict, conflictErrors},
		{http.StatusBadRequest, badRequestErrors},
	} {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.status
			}
		}
	}
	return http.StatusInternalServerError
}

// respondError writes err with its mapped status. Unexpected errors are
// logged and hidden behind message.
func respondError(c *gin.Context, err error, message string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg(message)
		c.JSON(status, gin.H{
			"error": message,
		})
		return
	}

	c.JSON(status, gin.H{
		"error": err.Error(),
	})
}
