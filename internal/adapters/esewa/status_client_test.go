package esewa

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/nepalpay/esewa-service/internal/domain"
	"github.com/nepalpay/esewa-service/internal/domain/ports"
	pkgerrors "github.com/nepalpay/esewa-service/pkg/errors"
	"github.com/nepalpay/esewa-service/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusRequest() *ports.StatusRequest {
	return &ports.StatusRequest{
		ProductCode:     "EPAYTEST",
		TotalAmount:     "100",
		TransactionUUID: "11-201-13",
		Environment:     ports.EnvironmentTest,
	}
}

func TestGetStatus_Success(t *testing.T) {
	httpClient := mocks.NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return mocks.JSONResponse(200, `{
			"product_code": "EPAYTEST",
			"transaction_uuid": "11-201-13",
			"total_amount": 100.0,
			"status": "COMPLETE",
			"ref_id": "0001TX"
		}`), nil
	})
	client := NewStatusClient(nil, httpClient, mocks.NewMockLogger())

	status, err := client.GetStatus(context.Background(), statusRequest())
	require.NoError(t, err)
	assert.Equal(t, "COMPLETE", status)

	require.Len(t, httpClient.Calls, 1)
	req := httpClient.Calls[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "uat.esewa.com.np", req.URL.Host)
	assert.Equal(t, "/api/epay/transaction/status/", req.URL.Path)

	query := req.URL.Query()
	assert.Equal(t, "EPAYTEST", query.Get("product_code"))
	assert.Equal(t, "100", query.Get("total_amount"))
	assert.Equal(t, "11-201-13", query.Get("transaction_uuid"))
}

func TestGetStatus_ProductionBaseURL(t *testing.T) {
	httpClient := mocks.NewMockHTTPClient(nil)
	client := NewStatusClient(nil, httpClient, mocks.NewMockLogger())

	req := statusRequest()
	req.Environment = ports.EnvironmentProduction
	_, err := client.GetStatus(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, httpClient.Calls, 1)
	assert.Equal(t, "epay.esewa.com.np", httpClient.Calls[0].URL.Host)
}

func TestGetStatus_AbsentStatusField(t *testing.T) {
	httpClient := mocks.NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return mocks.JSONResponse(200, `{"ref_id": "0001TX"}`), nil
	})
	client := NewStatusClient(nil, httpClient, mocks.NewMockLogger())

	status, err := client.GetStatus(context.Background(), statusRequest())
	require.NoError(t, err)
	assert.Equal(t, "", status)
}

func TestGetStatus_Non200ReturnsRemoteStatusError(t *testing.T) {
	httpClient := mocks.NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return mocks.JSONResponse(503, `{"error": "service unavailable"}`), nil
	})
	client := NewStatusClient(nil, httpClient, mocks.NewMockLogger())

	_, err := client.GetStatus(context.Background(), statusRequest())

	var remoteErr *domain.RemoteStatusError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, 503, remoteErr.StatusCode)
	assert.Contains(t, remoteErr.Body, "service unavailable")
}

func TestGetStatus_TransportError(t *testing.T) {
	httpClient := mocks.NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	client := NewStatusClient(nil, httpClient, mocks.NewMockLogger())

	_, err := client.GetStatus(context.Background(), statusRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	var gerr *pkgerrors.GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, pkgerrors.CategoryNetworkError, gerr.Category)
	assert.True(t, gerr.IsRetriable)
}

func TestGetStatus_MalformedJSON(t *testing.T) {
	httpClient := mocks.NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return mocks.JSONResponse(200, `not json`), nil
	})
	client := NewStatusClient(nil, httpClient, mocks.NewMockLogger())

	_, err := client.GetStatus(context.Background(), statusRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse JSON response")

	var gerr *pkgerrors.GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, pkgerrors.CategoryMalformedInput, gerr.Category)
	assert.False(t, gerr.IsRetriable)
}
