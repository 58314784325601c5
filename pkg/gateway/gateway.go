package gateway

import (
	"bytes"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Transaction status codes returned by the IPG status endpoint
const (
	StatusInvalid   = 0 // tracking ID unknown to the gateway
	StatusCompleted = 1
	StatusFailed    = 2
	StatusReversed  = 3 // charge was reversed after completion
)

// EnvironmentURLs maps environment names to their IPG endpoint base URLs
var EnvironmentURLs = map[string]string{
	"sandbox":    "https://sandbox.ipg.tourvista.com/api/v2",
	"production": "https://ipg.tourvista.com/api/v2",
}

// TransactionStatus is the gateway's answer to a status query. StatusCode is
// the authoritative field; Description is informational only.
type TransactionStatus struct {
	TrackingID       string  `json:"trackingId"`
	StatusCode       int     `json:"statusCode"`
	Description      string  `json:"description"`
	ConfirmationCode string  `json:"confirmationCode,omitempty"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
}

// WebhookPayload is the asynchronous notification the gateway POSTs after a
// transaction settles. Webhook deliveries are unauthenticated hints: the
// caller must re-query the status endpoint before acting on one.
type WebhookPayload struct {
	TrackingID   string `json:"trackingId"`
	InvoiceID    string `json:"invoiceId"`
	StatusCode   int    `json:"statusCode"`
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
	CheckValue   string `json:"checkValue,omitempty"`
}

// StatusClient queries a payment gateway for the settled state of a transaction
type StatusClient interface {
	GetTransactionStatus(trackingID string) (*TransactionStatus, error)
}

type statusRequest struct {
	MerchantKey string `json:"merchantKey"`
	TrackingID  string `json:"trackingId"`
	CheckValue  string `json:"checkValue"`
}

// Config holds the merchant credentials and endpoint selection
type Config struct {
	Environment   string // "sandbox" or "production"
	BaseURL       string // overrides the environment URL when set
	MerchantKey   string
	MerchantToken string
}

// Client talks to the tour payment IPG over HTTPS
type Client struct {
	config Config
	logger *logrus.Logger
	client *http.Client
}

// NewClient creates a gateway client
func NewClient(cfg Config, logger *logrus.Logger) *Client {
	return &Client{
		config: cfg,
		logger: logger,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// IsConfigured returns true if merchant credentials are present
func (c *Client) IsConfigured() bool {
	return c.config.MerchantKey != "" && c.config.MerchantToken != ""
}

// GenerateCheckValue creates the SHA-512 check value for gateway authentication
// Step 1: hash1 = SHA512(merchantToken) uppercase hex
// Step 2: hash2 = SHA512("merchantKey|trackingId|hash1") uppercase hex
func (c *Client) GenerateCheckValue(trackingID string) string {
	hash1 := sha512.Sum512([]byte(c.config.MerchantToken))
	hash1Hex := strings.ToUpper(hex.EncodeToString(hash1[:]))

	data := fmt.Sprintf("%s|%s|%s", c.config.MerchantKey, trackingID, hash1Hex)
	hash2 := sha512.Sum512([]byte(data))
	return strings.ToUpper(hex.EncodeToString(hash2[:]))
}

func (c *Client) baseURL() string {
	if c.config.BaseURL != "" {
		return c.config.BaseURL
	}
	if url, ok := EnvironmentURLs[c.config.Environment]; ok {
		return url
	}
	return EnvironmentURLs["sandbox"]
}

// GetTransactionStatus queries the gateway for the current state of a
// transaction. A nil error with StatusCode 0 means the gateway does not
// recognize the tracking ID.
func (c *Client) GetTransactionStatus(trackingID string) (*TransactionStatus, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("payment gateway not configured: missing merchant credentials")
	}

	request := &statusRequest{
		MerchantKey: c.config.MerchantKey,
		TrackingID:  trackingID,
		CheckValue:  c.GenerateCheckValue(trackingID),
	}

	statusURL := c.baseURL() + "/transaction-status"

	jsonBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"tracking_id": trackingID,
		"status_url":  statusURL,
		"environment": c.config.Environment,
	}).Info("Querying gateway transaction status")

	resp, err := c.client.Post(statusURL, "application/json", bytes.NewBuffer(jsonBody))
	if err != nil {
		c.logger.WithError(err).Error("Failed to call gateway status endpoint")
		return nil, fmt.Errorf("failed to query payment gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment gateway returned status %d: %s", resp.StatusCode, string(body))
	}

	var status TransactionStatus
	if err := json.Unmarshal(body, &status); err != nil {
		c.logger.WithFields(logrus.Fields{
			"body":  string(body),
			"error": err.Error(),
		}).Error("Failed to parse gateway response")
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &status, nil
}

// ParseWebhook validates and parses a webhook notification body
func ParseWebhook(body []byte) (*WebhookPayload, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("invalid webhook payload: %w", err)
	}
	if payload.TrackingID == "" {
		return nil, fmt.Errorf("webhook missing tracking ID")
	}
	return &payload, nil
}
