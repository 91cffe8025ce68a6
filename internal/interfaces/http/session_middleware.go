package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pharma-erp-api/internal/application/dto"
)

// HeaderSessionID identifica la sesión de edición (un conjunto de borradores por sesión).
const HeaderSessionID = "X-Session-ID"

// LocalSessionID key en c.Locals.
const LocalSessionID = "session_id"

// SessionMiddleware exige el header X-Session-ID y lo deja en c.Locals.
func SessionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := strings.TrimSpace(c.Get(HeaderSessionID))
		if sessionID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_SESSION", Message: "header X-Session-ID requerido"})
		}
		if len(sessionID) > 128 || strings.ContainsAny(sessionID, ": \t") {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_SESSION", Message: "X-Session-ID inválido"})
		}
		c.Locals(LocalSessionID, sessionID)
		return c.Next()
	}
}

// GetSessionID devuelve el id de sesión del contexto (después de SessionMiddleware).
func GetSessionID(c *fiber.Ctx) string {
	v := c.Locals(LocalSessionID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
