package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/datatwine/CreateScale/internal/interface/http/response"
	"github.com/datatwine/CreateScale/internal/logger"
)

// ErrorHandler логирует ошибки, прикреплённые к запросу, и отвечает 500,
// если обработчик так ничего и не записал.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()
		logger.Log.WithFields(logrus.Fields{
			"error":    err.Error(),
			"path":     c.Request.URL.Path,
			"method":   c.Request.Method,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Error("Request error")

		if c.Writer.Written() {
			return
		}
		response.Error(c, err.Err)
	}
}

// Recovery превращает panic обработчика в 500 с логом через logrus.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered interface{}) {
		logger.Log.WithFields(logrus.Fields{
			"panic":  recovered,
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).Error("Request panic")
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}
