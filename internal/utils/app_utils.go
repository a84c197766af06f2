package utils

import (
	"errors"
	"net"
	"net/url"
	"strings"

	"github.com/tinypost/tinypost/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/weppos/publicsuffix-go/publicsuffix"
)

// GetCookieDomain returns the registrable domain of the app URL (app.example.co.uk -> example.co.uk).
// IP addresses and single label hosts like localhost are returned unchanged.
func GetCookieDomain(appUrl string) (string, error) {
	parsed, err := url.Parse(appUrl)
	if err != nil {
		return "", err
	}

	host := parsed.Hostname()

	if host == "" {
		return "", errors.New("app url has no host")
	}

	if net.ParseIP(host) != nil || !strings.Contains(host, ".") {
		return host, nil
	}

	domain, err := publicsuffix.Domain(host)
	if err != nil {
		return "", err
	}

	return domain, nil
}

func GetContext(c *gin.Context) (config.UserContext, error) {
	userContextValue, exists := c.Get("context")

	if !exists {
		return config.UserContext{}, errors.New("no user context in request")
	}

	userContext, ok := userContextValue.(*config.UserContext)

	if !ok {
		return config.UserContext{}, errors.New("invalid user context in request")
	}

	return *userContext, nil
}
