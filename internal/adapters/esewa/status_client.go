package esewa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nepalpay/esewa-service/internal/domain"
	"github.com/nepalpay/esewa-service/internal/domain/ports"
	pkgerrors "github.com/nepalpay/esewa-service/pkg/errors"
)

// StatusClientConfig contains configuration for the transaction status client
type StatusClientConfig struct {
	TestBaseURL       string
	ProductionBaseURL string
	Timeout           time.Duration
}

// DefaultStatusClientConfig returns default configuration pointing at the
// published eSewa hosts
func DefaultStatusClientConfig() *StatusClientConfig {
	return &StatusClientConfig{
		TestBaseURL:       "https://uat.esewa.com.np",
		ProductionBaseURL: "https://epay.esewa.com.np",
		Timeout:           30 * time.Second,
	}
}

// statusClient implements the StatusAdapter port against the eSewa
// transaction status endpoint
type statusClient struct {
	config     *StatusClientConfig
	httpClient ports.HTTPClient
	logger     ports.Logger
}

// NewStatusClient creates a new transaction status client
func NewStatusClient(
	config *StatusClientConfig,
	httpClient ports.HTTPClient,
	logger ports.Logger,
) ports.StatusAdapter {
	if config == nil {
		config = DefaultStatusClientConfig()
	}
	return &statusClient{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}
}

// eSewa status API response structure
type esewaStatusResponse struct {
	ProductCode     string `json:"product_code"`
	TransactionUUID string `json:"transaction_uuid"`
	TotalAmount     any    `json:"total_amount"`
	Status          string `json:"status"`
	RefID           string `json:"ref_id"`
}

func (c *statusClient) baseURL(environment string) string {
	if environment == ports.EnvironmentProduction {
		return c.config.ProductionBaseURL
	}
	return c.config.TestBaseURL
}

// GetStatus queries the eSewa status endpoint for a single transaction.
// An empty string is returned when the response carries no status field;
// mapping raw strings onto known statuses is the caller's concern.
func (c *statusClient) GetStatus(ctx context.Context, req *ports.StatusRequest) (string, error) {
	endpoint := fmt.Sprintf("%s/api/epay/transaction/status/", strings.TrimRight(c.baseURL(req.Environment), "/"))
	reqURL, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to parse endpoint URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("product_code", req.ProductCode)
	query.Set("total_amount", req.TotalAmount)
	query.Set("transaction_uuid", req.TransactionUUID)
	reqURL.RawQuery = query.Encode()

	c.logger.Info("Calling eSewa status API",
		ports.String("transaction_uuid", req.TransactionUUID),
		ports.String("product_code", req.ProductCode),
		ports.String("environment", req.Environment),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	startTime := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("eSewa status API request failed",
			ports.Err(err),
			ports.String("elapsed", time.Since(startTime).String()),
		)
		gerr := pkgerrors.NewGatewayError("STATUS_REQUEST_FAILED", "HTTP request failed", pkgerrors.CategoryNetworkError, true)
		gerr.GatewayMessage = err.Error()
		return "", gerr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Info("eSewa status API response",
		ports.Int("status_code", resp.StatusCode),
		ports.String("elapsed", time.Since(startTime).String()),
	)

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("eSewa status API returned non-200 status",
			ports.Int("status_code", resp.StatusCode),
			ports.String("response_body", string(body)),
		)
		return "", &domain.RemoteStatusError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var statusResp esewaStatusResponse
	if err := json.Unmarshal(body, &statusResp); err != nil {
		gerr := pkgerrors.NewGatewayError("STATUS_MALFORMED_RESPONSE", "failed to parse JSON response", pkgerrors.CategoryMalformedInput, false)
		gerr.GatewayMessage = err.Error()
		return "", gerr
	}

	return statusResp.Status, nil
}
