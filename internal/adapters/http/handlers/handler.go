package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"

	"quest-alumni/internal/adapters/http/middleware"
	"quest-alumni/internal/core/domain"
	"quest-alumni/internal/pkg/logger"
	"quest-alumni/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// respondError maps a service error to its HTTP status. Errors outside
// the domain categories are logged and hidden behind a generic 500.
func respondError(c *fiber.Ctx, err error) error {
	var derr *domain.Error
	if errors.As(err, &derr) {
		msg := err.Error()
		switch {
		case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidTransition):
			return response.BadRequest(c, msg)
		case errors.Is(err, domain.ErrUnauthorized):
			return response.Unauthorized(c, msg)
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, msg)
		case errors.Is(err, domain.ErrNotFound):
			return response.NotFound(c, msg)
		case errors.Is(err, domain.ErrConflict):
			return response.Conflict(c, msg)
		}
	}

	log := logger.WithRequestID(zap.L(), requestID(c))
	if actor, ok := middleware.GetActor(c); ok {
		log = logger.WithUserID(log, actor.UserID)
	}
	log.Error("❌ Request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return response.InternalServerError(c, "Internal server error")
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}

// paramID parses a positive integer path parameter
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func parseUint(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

// withUpload opens an uploaded file for fn and closes it afterwards
func withUpload(header *multipart.FileHeader, fn func(file multipart.File, contentType string) (interface{}, error)) (interface{}, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	return fn(file, header.Header.Get("Content-Type"))
}
