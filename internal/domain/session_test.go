package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/nepalpay/esewa-service/internal/domain/ports"
	"github.com/nepalpay/esewa-service/test/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() SessionConfig {
	return SessionConfig{
		ProductCode: "EPAYTEST",
		SecretKey:   vectorSecret,
		SuccessURL:  "https://merchant.example/success",
		FailureURL:  "https://merchant.example/failure",
		Environment: ports.EnvironmentTest,
	}
}

func signedSession(t *testing.T, status ports.StatusAdapter) *PaymentSession {
	t.Helper()
	s := NewPaymentSession(testConfig(), status)
	_, err := s.CreateSignature(decimal.NewFromInt(100), "11-201-13")
	require.NoError(t, err)
	return s
}

func TestNewPaymentSession_Defaults(t *testing.T) {
	var warnings []string
	s := NewPaymentSession(SessionConfig{
		WarnFunc: func(msg string) { warnings = append(warnings, msg) },
	}, nil)

	assert.Equal(t, SessionStateCreated, s.State())
	assert.Equal(t, DefaultProductCode, s.ProductCode())
	assert.Equal(t, StatusUnknown, s.LastStatus())
	// One warning each for secret, success URL and failure URL. The product
	// code default is the published sandbox code, not a misconfiguration.
	assert.Len(t, warnings, 3)
}

func TestNewPaymentSession_ExplicitConfigEmitsNoWarnings(t *testing.T) {
	var warnings []string
	cfg := testConfig()
	cfg.WarnFunc = func(msg string) { warnings = append(warnings, msg) }
	NewPaymentSession(cfg, nil)
	assert.Empty(t, warnings)
}

func TestCreateSignature(t *testing.T) {
	s := NewPaymentSession(testConfig(), nil)

	sig, err := s.CreateSignature(decimal.NewFromInt(100), "11-201-13")
	require.NoError(t, err)

	assert.Equal(t, vectorSignature, sig)
	assert.Equal(t, SessionStateSigned, s.State())
	assert.Equal(t, sig, s.Signature())
	assert.Equal(t, "11-201-13", s.TransactionUUID())
	assert.Equal(t, "100", FormatAmount(s.TotalAmount()))
}

func TestCreateSignature_OverwriteReplacesEverything(t *testing.T) {
	s := signedSession(t, nil)
	first := s.Signature()

	second, err := s.CreateSignature(decimal.NewFromInt(250), "22-301-14")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, second, s.Signature())
	assert.Equal(t, "22-301-14", s.TransactionUUID())
	assert.Equal(t, SessionStateSigned, s.State())
}

func echoPayload(s *PaymentSession) map[string]string {
	return map[string]string{
		"transaction_code":    "0LD5CEH",
		"status":              "COMPLETE",
		"total_amount":        FormatAmount(s.TotalAmount()),
		"transaction_uuid":    s.TransactionUUID(),
		"product_code":        s.ProductCode(),
		FieldSignedFieldNames: "transaction_code,status,total_amount,transaction_uuid,product_code",
		FieldSignature:        s.Signature(),
	}
}

func TestVerifySignature_RoundTrip(t *testing.T) {
	s := signedSession(t, nil)
	payload := echoPayload(s)

	ok, decoded := s.VerifySignature(encodePayload(t, payload))

	assert.True(t, ok)
	require.NotNil(t, decoded)
	assert.Equal(t, CallbackPayload(payload), decoded)
	assert.Equal(t, SessionStateVerified, s.State())
}

func TestVerifySignature_WrongSignatureRejects(t *testing.T) {
	s := signedSession(t, nil)
	payload := echoPayload(s)
	payload[FieldSignature] = "bm90LXRoZS1zaWduYXR1cmU="

	ok, decoded := s.VerifySignature(encodePayload(t, payload))

	assert.False(t, ok)
	assert.Nil(t, decoded)
	assert.Equal(t, SessionStateRejected, s.State())
}

func TestVerifySignature_UntrustedInputNeverRaises(t *testing.T) {
	tests := []struct {
		name    string
		encoded func(t *testing.T, s *PaymentSession) string
	}{
		{
			name:    "malformed base64",
			encoded: func(t *testing.T, s *PaymentSession) string { return "%%%%" },
		},
		{
			name: "valid base64, malformed JSON",
			encoded: func(t *testing.T, s *PaymentSession) string {
				return "eyJicm9rZW4i" // base64 of `{"broken"`
			},
		},
		{
			name: "missing signature",
			encoded: func(t *testing.T, s *PaymentSession) string {
				p := echoPayload(s)
				delete(p, FieldSignature)
				return encodePayload(t, p)
			},
		},
		{
			name: "missing signed_field_names",
			encoded: func(t *testing.T, s *PaymentSession) string {
				p := echoPayload(s)
				delete(p, FieldSignedFieldNames)
				return encodePayload(t, p)
			},
		},
		{
			name: "declared field absent from payload",
			encoded: func(t *testing.T, s *PaymentSession) string {
				p := echoPayload(s)
				delete(p, "transaction_code")
				return encodePayload(t, p)
			},
		},
		{
			name: "empty payload",
			encoded: func(t *testing.T, s *PaymentSession) string {
				return encodePayload(t, map[string]string{})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := signedSession(t, nil)
			ok, decoded := s.VerifySignature(tt.encoded(t, s))
			assert.False(t, ok)
			assert.Nil(t, decoded)
			assert.Equal(t, SessionStateRejected, s.State())
		})
	}
}

func TestVerifySignature_EchoModeRequiresSignedSession(t *testing.T) {
	s := NewPaymentSession(testConfig(), nil)
	other := signedSession(t, nil)

	ok, decoded := s.VerifySignature(encodePayload(t, echoPayload(other)))

	assert.False(t, ok)
	assert.Nil(t, decoded)
}

func TestVerifySignature_RecomputeMode(t *testing.T) {
	cfg := testConfig()
	cfg.VerifyMode = VerifyModeRecompute
	s := NewPaymentSession(cfg, nil)

	// The gateway signs the callback's own declared field set, which is
	// wider than the outbound three-field order.
	payload := map[string]string{
		"transaction_code":    "0LD5CEH",
		"status":              "COMPLETE",
		"total_amount":        "100",
		"transaction_uuid":    "11-201-13",
		"product_code":        "EPAYTEST",
		FieldSignedFieldNames: "transaction_code,status,total_amount,transaction_uuid,product_code",
	}
	declared := []string{"transaction_code", "status", "total_amount", "transaction_uuid", "product_code"}
	signature, err := Sign(declared, payload, cfg.SecretKey)
	require.NoError(t, err)
	payload[FieldSignature] = signature

	ok, decoded := s.VerifySignature(encodePayload(t, payload))
	assert.True(t, ok)
	assert.NotNil(t, decoded)
	assert.Equal(t, SessionStateVerified, s.State())

	// Tampering with a signed field breaks recompute verification even
	// though echo mode would not have noticed without a local signature.
	payload["total_amount"] = "999"
	s2 := NewPaymentSession(cfg, nil)
	ok, decoded = s2.VerifySignature(encodePayload(t, payload))
	assert.False(t, ok)
	assert.Nil(t, decoded)
}

func TestVerifySignature_EchoModeIgnoresTamperedFields(t *testing.T) {
	// Documents the compatibility gap: echo mode only checks that the
	// signature string matches the outbound one, so a payload that claims
	// different business fields but echoes our signature still verifies.
	s := signedSession(t, nil)
	payload := echoPayload(s)
	payload["total_amount"] = "999999"

	ok, _ := s.VerifySignature(encodePayload(t, payload))
	assert.True(t, ok)
}

func TestFetchStatus(t *testing.T) {
	status := mocks.NewMockStatusAdapter(func(ctx context.Context, req *ports.StatusRequest) (string, error) {
		return "COMPLETE", nil
	})
	s := signedSession(t, status)

	got, err := s.FetchStatus(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusComplete, got)
	assert.Equal(t, SessionStateStatusKnown, s.State())
	assert.Equal(t, StatusComplete, s.LastStatus())

	require.Len(t, status.Calls, 1)
	req := status.Calls[0]
	assert.Equal(t, "EPAYTEST", req.ProductCode)
	assert.Equal(t, "100", req.TotalAmount)
	assert.Equal(t, "11-201-13", req.TransactionUUID)
	assert.Equal(t, ports.EnvironmentTest, req.Environment)
}

func TestFetchStatus_AbsentStatusIsUnknownNotError(t *testing.T) {
	status := mocks.NewMockStatusAdapter(func(ctx context.Context, req *ports.StatusRequest) (string, error) {
		return "", nil
	})
	s := signedSession(t, status)

	got, err := s.FetchStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusUnknown, got)
}

func TestFetchStatus_RemoteErrorPropagates(t *testing.T) {
	remoteErr := &RemoteStatusError{StatusCode: 503, Body: "unavailable"}
	status := mocks.NewMockStatusAdapter(func(ctx context.Context, req *ports.StatusRequest) (string, error) {
		return "", remoteErr
	})
	s := signedSession(t, status)

	_, err := s.FetchStatus(context.Background())
	var rse *RemoteStatusError
	require.ErrorAs(t, err, &rse)
	assert.Equal(t, 503, rse.StatusCode)
	// A failed fetch does not move the session to STATUS_KNOWN.
	assert.Equal(t, SessionStateSigned, s.State())
}

func TestIsCompleted(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		err    error
		want   bool
		hasErr bool
	}{
		{name: "complete", raw: "COMPLETE", want: true},
		{name: "pending", raw: "PENDING", want: false},
		{name: "absent status", raw: "", want: false},
		{name: "remote failure", err: errors.New("boom"), hasErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := mocks.NewMockStatusAdapter(func(ctx context.Context, req *ports.StatusRequest) (string, error) {
				return tt.raw, tt.err
			})
			s := signedSession(t, status)

			got, err := s.IsCompleted(context.Background())
			if tt.hasErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormFields(t *testing.T) {
	s := signedSession(t, nil)

	fields, err := s.FormFields()
	require.NoError(t, err)

	names := make([]string, len(fields))
	values := make(map[string]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
		values[f.Name] = f.Value
	}

	assert.Equal(t, []string{
		"amount",
		"product_delivery_charge",
		"product_service_charge",
		"total_amount",
		"tax_amount",
		"product_code",
		"transaction_uuid",
		"success_url",
		"failure_url",
		"signed_field_names",
		"signature",
	}, names)

	assert.Equal(t, "100", values["amount"])
	assert.Equal(t, "100", values["total_amount"])
	assert.Equal(t, "0", values["product_delivery_charge"])
	assert.Equal(t, "0", values["product_service_charge"])
	assert.Equal(t, "0", values["tax_amount"])
	assert.Equal(t, "EPAYTEST", values["product_code"])
	assert.Equal(t, "11-201-13", values["transaction_uuid"])
	assert.Equal(t, "total_amount,transaction_uuid,product_code", values["signed_field_names"])
	assert.Equal(t, s.Signature(), values["signature"])
}

func TestFormFields_RequiresSignature(t *testing.T) {
	s := NewPaymentSession(testConfig(), nil)
	_, err := s.FormFields()
	assert.ErrorIs(t, err, ErrSessionNotSigned)
}

func TestSessionEqual(t *testing.T) {
	base := NewPaymentSession(testConfig(), nil)

	sameMerchant := signedSession(t, nil) // different amount/uuid, same merchant
	assert.True(t, base.Equal(sameMerchant))
	assert.True(t, sameMerchant.Equal(base))

	otherSecret := testConfig()
	otherSecret.SecretKey = "a-different-secret"
	assert.False(t, base.Equal(NewPaymentSession(otherSecret, nil)))

	otherProduct := testConfig()
	otherProduct.ProductCode = "NP-ES-OTHER"
	assert.False(t, base.Equal(NewPaymentSession(otherProduct, nil)))

	assert.False(t, base.Equal(nil))
}

func TestRestoreSignedSession(t *testing.T) {
	original := signedSession(t, nil)

	restored := RestoreSignedSession(testConfig(), nil,
		decimal.NewFromInt(100), "11-201-13", original.Signature())

	assert.Equal(t, SessionStateSigned, restored.State())

	ok, decoded := restored.VerifySignature(encodePayload(t, echoPayload(original)))
	assert.True(t, ok)
	assert.NotNil(t, decoded)
}

func TestLogTransaction_NeverLogsSecret(t *testing.T) {
	s := signedSession(t, nil)
	logger := mocks.NewMockLogger()

	s.LogTransaction(logger)

	require.Len(t, logger.InfoCalls, 1)
	for _, f := range logger.InfoCalls[0].Fields {
		if str, ok := f.Value.(string); ok {
			assert.NotContains(t, str, vectorSecret)
		}
	}
}
