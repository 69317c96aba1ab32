package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/bytes"
)

const DefaultBodyLimit = "1M"

// BodyLimit rejects bodies over limit with 413, both by Content-Length and
// while the body is read. Sizes are "512K", "1M", "1G" or a byte count; an
// unparsable size falls back to DefaultBodyLimit.
func BodyLimit(limit string) echo.MiddlewareFunc {
	if !ValidBodyLimit(limit) {
		limit = DefaultBodyLimit
	}
	return echomw.BodyLimitWithConfig(echomw.BodyLimitConfig{Limit: limit})
}

func ValidBodyLimit(limit string) bool {
	_, err := bytes.Parse(limit)
	return err == nil
}
