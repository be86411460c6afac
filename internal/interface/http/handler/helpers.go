package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/datatwine/CreateScale/internal/http/middleware"
	"github.com/datatwine/CreateScale/internal/pkg/apperror"
	"github.com/datatwine/CreateScale/internal/service"
	"github.com/datatwine/CreateScale/internal/usecase/engagement"
)

// getActor собирает пользователя из ключей, которые кладёт AuthMiddleware.
func getActor(c *gin.Context) (engagement.Actor, error) {
	userIDValue, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return engagement.Actor{}, apperror.ErrUnauthorized
	}

	userID, ok := userIDValue.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return engagement.Actor{}, apperror.ErrUnauthorized
	}

	role := c.GetString(middleware.ContextRoleKey)
	return engagement.Actor{UserID: userID, IsAdmin: role == service.RoleAdmin}, nil
}

func parseIntQuery(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
