package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/edupay/backend/internal/domain/ledger"
	"github.com/edupay/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const ordersPath = "/orders"

// RazorpayClient implements ledger.OrderGateway against the Razorpay
// Orders API.
type RazorpayClient struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
	log        *zap.Logger
}

// NewRazorpayClient creates a new order gateway client
func NewRazorpayClient(cfg config.GatewayConfig, log *zap.Logger) *RazorpayClient {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &RazorpayClient{
		baseURL:   cfg.BaseURL,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"` // in paise
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type gatewayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder opens an order at the gateway and returns its ID. The
// amount is rupees; the wire format wants integer paise.
func (c *RazorpayClient) CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (string, error) {
	body, err := json.Marshal(createOrderRequest{
		Amount:   amount.Mul(decimal.NewFromInt(100)).IntPart(),
		Currency: "INR",
		Receipt:  receipt,
	})
	if err != nil {
		return "", fmt.Errorf("gateway: failed to marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ordersPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gateway: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway: order request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gateway: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp gatewayErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			return "", fmt.Errorf("gateway: order rejected: %s - %s", errResp.Error.Code, errResp.Error.Description)
		}
		return "", fmt.Errorf("gateway: order rejected: HTTP %d", resp.StatusCode)
	}

	var order createOrderResponse
	if err := json.Unmarshal(respBody, &order); err != nil {
		return "", fmt.Errorf("gateway: failed to decode response: %w", err)
	}
	if order.ID == "" {
		return "", fmt.Errorf("gateway: response missing order id")
	}

	c.log.Info("Gateway order created",
		zap.String("gateway_order_id", order.ID),
		zap.String("receipt", receipt))

	return order.ID, nil
}

var _ ledger.OrderGateway = (*RazorpayClient)(nil)
