package engine

import (
	"github.com/gofiber/fiber/v2"

	"curia-backend/internal/metadata"
)

// CheckPermission verifies the user may perform action on the entity.
// Reads are open to any authenticated user; writes need the editor or admin
// role. A nil user means authentication is disabled.
func CheckPermission(user *metadata.UserContext, entity *metadata.Entity, action string) error {
	if user == nil {
		return nil
	}
	if action == "read" {
		return nil
	}
	if !user.CanWrite() {
		return ForbiddenError("Permission denied: " + action + " on " + entity.Label)
	}
	return nil
}

func getUser(c *fiber.Ctx) *metadata.UserContext {
	user, _ := c.Locals("user").(*metadata.UserContext)
	return user
}

// operator returns the name stamped into audit columns for this request.
func operator(user *metadata.UserContext) string {
	if user == nil {
		return ""
	}
	if user.Email != "" {
		return user.Email
	}
	return user.ID
}
