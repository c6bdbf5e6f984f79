package ports

import "context"

// Gateway environments for the status endpoint. The base URL is selected by
// the adapter; sessions carry the environment as configuration resolved once
// at construction.
const (
	EnvironmentTest       = "test"
	EnvironmentProduction = "production"
)

// StatusRequest identifies one transaction to the status endpoint. All
// values are pre-formatted strings; amount formatting happens before this
// layer so the query is byte-stable.
type StatusRequest struct {
	ProductCode     string
	TotalAmount     string
	TransactionUUID string
	Environment     string
}

// StatusAdapter defines the port for the remote transaction status lookup.
// GetStatus performs a single GET with no internal retry, batching or
// caching. It returns the raw status value from the response body ("" when
// the field is absent); mapping to a TransactionStatus is the domain's job.
// A non-200 response or transport failure is returned as an error.
type StatusAdapter interface {
	GetStatus(ctx context.Context, req *StatusRequest) (string, error)
}
