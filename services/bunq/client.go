package bunq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sessionContext is the cached credential bundle obtained by the handshake.
// It lives in memory for the lifetime of the process and is never persisted.
type sessionContext struct {
	InstallationToken string
	SessionToken      string
	UserID            int64
	MonetaryAccountID string
}

// Client talks to the bunq payment-request API. The one-time registration
// handshake runs lazily on the first payment-related call; the resulting
// session context is cached and reused. The cache is guarded by a mutex so
// concurrent callers trigger the handshake at most once.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger

	// ipProviders overrides the public IP lookup services in tests.
	ipProviders []string

	mu      sync.Mutex
	session *sessionContext
}

// PaymentRequestResult is the outcome of creating a remote payment request.
type PaymentRequestResult struct {
	RequestID  int64
	PaymentURL string
}

// NewClient builds a gateway client around an injected configuration.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// EnsureReady runs the registration handshake if no session context is
// cached yet. Safe to call concurrently. A failed handshake caches nothing;
// the next call re-runs the full chain from scratch.
func (c *Client) EnsureReady(ctx context.Context) error {
	_, err := c.ready(ctx)
	return err
}

// ready returns the cached session context, running the handshake first if
// needed. Callers keep the returned value instead of re-reading the cached
// field, so a concurrent Reset cannot pull the session out from under an
// in-flight operation.
func (c *Client) ready(ctx context.Context) (*sessionContext, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return c.session, nil
	}

	session, err := c.initializeContext(ctx)
	if err != nil {
		return nil, err
	}
	c.session = session
	return session, nil
}

// Reset drops the cached session context so the next call re-runs the
// handshake. Used by the connectivity test endpoint.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = nil
}

// initializeContext performs the four-step handshake: register the client
// public key (installation), register this server's IP as a permitted
// caller (device-server), open a signed session (session-server), and
// resolve the remote user id. Any step's failure aborts the whole chain.
func (c *Client) initializeContext(ctx context.Context) (*sessionContext, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}

	sgn, err := newSigner(c.cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("session signing key: %w", err)
	}

	// Step 1: installation.
	installationToken, err := c.install(ctx)
	if err != nil {
		return nil, err
	}

	// Step 2: device registration.
	if err := c.registerDevice(ctx, installationToken); err != nil {
		return nil, err
	}

	// Step 3: signed session start.
	sessionToken, err := c.startSession(ctx, installationToken, sgn)
	if err != nil {
		return nil, err
	}

	// Step 4: identity resolution.
	userID, err := c.fetchUserID(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	c.logger.Info("bunq session established", zap.Int64("userID", userID))
	return &sessionContext{
		InstallationToken: installationToken,
		SessionToken:      sessionToken,
		UserID:            userID,
		MonetaryAccountID: c.cfg.AccountID,
	}, nil
}

func (c *Client) install(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"client_public_key": c.cfg.ClientPublicKey,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode installation request: %w", err)
	}

	env, err := c.call(ctx, http.MethodPost, "/installation", body, "", "")
	if err != nil {
		return "", fmt.Errorf("installation step: %w", err)
	}
	tok, err := env.token()
	if err != nil {
		return "", fmt.Errorf("installation step: %w", err)
	}
	return tok.Token, nil
}

func (c *Client) registerDevice(ctx context.Context, installationToken string) error {
	ip, err := externalIP(ctx, c.http, c.ipProviders, c.logger)
	if err != nil {
		return fmt.Errorf("device registration step: %w", err)
	}

	body, err := json.Marshal(map[string]any{
		"description":   "autodeel server",
		"secret":        c.cfg.APIKey,
		"permitted_ips": []string{ip},
	})
	if err != nil {
		return fmt.Errorf("failed to encode device registration request: %w", err)
	}

	if _, err := c.call(ctx, http.MethodPost, "/device-server", body, installationToken, ""); err != nil {
		return fmt.Errorf("device registration step: %w", err)
	}
	return nil
}

func (c *Client) startSession(ctx context.Context, installationToken string, sgn *signer) (string, error) {
	body, err := json.Marshal(map[string]string{
		"secret": c.cfg.APIKey,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode session request: %w", err)
	}

	// The signature covers the exact serialized body bytes.
	signature, err := sgn.Sign(body)
	if err != nil {
		return "", fmt.Errorf("session start step: %w", err)
	}

	env, err := c.call(ctx, http.MethodPost, "/session-server", body, installationToken, signature)
	if err != nil {
		return "", fmt.Errorf("session start step: %w", err)
	}
	tok, err := env.token()
	if err != nil {
		return "", fmt.Errorf("session start step: %w", err)
	}
	return tok.Token, nil
}

func (c *Client) fetchUserID(ctx context.Context, sessionToken string) (int64, error) {
	env, err := c.call(ctx, http.MethodGet, "/user", nil, sessionToken, "")
	if err != nil {
		return 0, fmt.Errorf("identity step: %w", err)
	}
	u, err := env.user()
	if err != nil {
		return 0, fmt.Errorf("identity step: %w", err)
	}
	return u.ID, nil
}

// CreatePaymentRequest creates a payment request addressed to the
// counterparty's email and returns the shareable payment URL. The creation
// response only carries the resource id, so a second fetch retrieves the
// share link.
func (c *Client) CreatePaymentRequest(ctx context.Context, amount float64, description, counterpartyEmail, redirectURL string) (*PaymentRequestResult, error) {
	session, err := c.ready(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"amount_inquired": map[string]string{
			"value":    fmt.Sprintf("%.2f", amount),
			"currency": "EUR",
		},
		"counterparty_alias": map[string]string{
			"type":  "EMAIL",
			"value": counterpartyEmail,
			"name":  counterpartyEmail,
		},
		"description":  description,
		"allow_bunqme": true,
	}
	if redirectURL != "" {
		payload["redirect_url"] = redirectURL
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payment request: %w", err)
	}

	env, err := c.call(ctx, http.MethodPost, c.requestInquiryPath(session, 0), body, session.SessionToken, "")
	if err != nil {
		return nil, fmt.Errorf("create payment request: %w", err)
	}
	requestID, err := env.id()
	if err != nil {
		return nil, fmt.Errorf("create payment request: %w", err)
	}

	// Second call: the creation response lacks the share URL.
	env, err = c.call(ctx, http.MethodGet, c.requestInquiryPath(session, requestID), nil, session.SessionToken, "")
	if err != nil {
		return nil, fmt.Errorf("fetch payment request %d: %w", requestID, err)
	}
	inquiry, err := env.requestInquiry()
	if err != nil {
		return nil, fmt.Errorf("fetch payment request %d: %w", requestID, err)
	}
	if inquiry.BunqmeShareURL == "" {
		return nil, fmt.Errorf("payment request %d has no share URL; is bunq.me sharing enabled on account %s?", requestID, session.MonetaryAccountID)
	}

	return &PaymentRequestResult{RequestID: requestID, PaymentURL: inquiry.BunqmeShareURL}, nil
}

// PaymentRequestStatus fetches a payment request by id and returns its
// status normalized to PENDING, ACCEPTED or REJECTED.
func (c *Client) PaymentRequestStatus(ctx context.Context, requestID int64) (string, error) {
	session, err := c.ready(ctx)
	if err != nil {
		return "", err
	}

	env, err := c.call(ctx, http.MethodGet, c.requestInquiryPath(session, requestID), nil, session.SessionToken, "")
	if err != nil {
		return "", fmt.Errorf("fetch payment request %d: %w", requestID, err)
	}
	inquiry, err := env.requestInquiry()
	if err != nil {
		return "", fmt.Errorf("fetch payment request %d: %w", requestID, err)
	}
	return normalizeStatus(inquiry.Status, c.logger), nil
}

func (c *Client) requestInquiryPath(session *sessionContext, requestID int64) string {
	path := fmt.Sprintf("/user/%d/monetary-account/%s/request-inquiry", session.UserID, session.MonetaryAccountID)
	if requestID != 0 {
		path += "/" + strconv.FormatInt(requestID, 10)
	}
	return path
}

// call performs one API round-trip and decodes the tagged-list envelope.
// Non-success responses are wrapped with the HTTP status and body so a
// failure can be diagnosed without re-running the handshake.
func (c *Client) call(ctx context.Context, method, path string, body []byte, authToken, signature string) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", "autodeel")
	req.Header.Set("X-Bunq-Client-Request-Id", uuid.New().String())
	req.Header.Set("X-Bunq-Geolocation", "0 0 0 0 000")
	req.Header.Set("X-Bunq-Language", "nl_NL")
	req.Header.Set("X-Bunq-Region", "nl_NL")
	if authToken != "" {
		req.Header.Set("X-Bunq-Client-Authentication", authToken)
	}
	if signature != "" {
		req.Header.Set("X-Bunq-Client-Signature", signature)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s returned status %d: %s", method, path, resp.StatusCode, string(respBody))
	}

	return decodeEnvelope(respBody)
}
