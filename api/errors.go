package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/Domenick1991/travelstore/internal/domain"
	"github.com/Domenick1991/travelstore/internal/repository"
	"github.com/Domenick1991/travelstore/internal/storage"
	"github.com/gin-gonic/gin"
)

// statusFor maps service errors to an HTTP status and a message safe to show
// the user.
func statusFor(err error) (int, string) {
	var (
		vErr *domain.ValidationError
		aErr *domain.AuthError
		wErr *domain.BackendWriteError
	)
	switch {
	case errors.As(err, &vErr):
		return http.StatusUnprocessableEntity, vErr.Message
	case errors.As(err, &aErr):
		if aErr.Duplicate {
			return http.StatusConflict, aErr.Message
		}
		return http.StatusUnauthorized, aErr.Message
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, storage.ErrBlobNotFound):
		return http.StatusNotFound, "not found"
	case errors.As(err, &wErr):
		log.Printf("backend write failed: %v", err)
		return http.StatusBadGateway, "the change could not be saved, try again later"
	default:
		log.Printf("request failed: %v", err)
		return http.StatusInternalServerError, "internal error"
	}
}

func respondError(c *gin.Context, err error) {
	status, message := statusFor(err)
	c.JSON(status, gin.H{"error": message})
}
