package middleware

import (
	"strings"
	"time"

	"github.com/tinypost/tinypost/internal/utils/tlog"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

var (
	loggerSkipPathsPrefix = []string{
		"GET /api/health",
		"HEAD /api/health",
		"GET /metrics",
		"GET /favicon.ico",
	}
)

type ZerologMiddleware struct{}

func NewZerologMiddleware() *ZerologMiddleware {
	return &ZerologMiddleware{}
}

func (m *ZerologMiddleware) Init() error {
	return nil
}

func (m *ZerologMiddleware) logPath(path string) bool {
	for _, prefix := range loggerSkipPathsPrefix {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

func (m *ZerologMiddleware) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tStart := time.Now()

		c.Next()

		code := c.Writer.Status()
		address := c.Request.RemoteAddr
		clientIP := c.ClientIP()
		method := c.Request.Method
		path := c.Request.URL.Path

		latency := time.Since(tStart).String()

		// Health checks and scrapes only show up at debug level
		if !m.logPath(method + " " + path) {
			tlog.HTTP.Debug().Str("method", method).Str("path", path).Str("address", address).Int("status", code).Str("latency", latency).Msg("Request")
			return
		}

		level := zerolog.InfoLevel

		switch {
		case code >= 400:
			level = zerolog.ErrorLevel
		case code >= 300:
			level = zerolog.WarnLevel
		}

		tlog.HTTP.WithLevel(level).Str("method", method).Str("path", path).Str("address", address).Str("clientIp", clientIP).Int("status", code).Str("latency", latency).Msg("Request")
	}
}
