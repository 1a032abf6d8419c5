package bunq

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// defaultIPProviders are plain-text "what is my IP" services, tried in
// order. The first that answers with a valid dotted quad wins.
var defaultIPProviders = []string{
	"https://api.ipify.org",
	"https://icanhazip.com",
	"https://ifconfig.me/ip",
}

var dottedQuad = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)

const ipLookupTimeout = 5 * time.Second

// externalIP discovers this server's public IP address, needed to register
// the server as a permitted caller. Each provider is bounded by its own
// timeout; the lookup only fails when every provider fails.
func externalIP(ctx context.Context, client *http.Client, providers []string, logger *zap.Logger) (string, error) {
	if len(providers) == 0 {
		providers = defaultIPProviders
	}

	var lastErr error
	for _, provider := range providers {
		ip, err := fetchIP(ctx, client, provider)
		if err != nil {
			logger.Warn("IP lookup provider failed",
				zap.String("provider", provider), zap.Error(err))
			lastErr = err
			continue
		}
		return ip, nil
	}
	return "", fmt.Errorf("all IP lookup providers failed, last error: %w", lastErr)
}

func fetchIP(ctx context.Context, client *http.Client, provider string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, ipLookupTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, provider, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build IP lookup request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("IP lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("IP lookup returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return "", fmt.Errorf("failed to read IP lookup response: %w", err)
	}

	ip := strings.TrimSpace(string(body))
	if !dottedQuad.MatchString(ip) {
		return "", fmt.Errorf("IP lookup returned an invalid address %q", ip)
	}
	return ip, nil
}
