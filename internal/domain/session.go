package domain

import (
	"context"

	"github.com/nepalpay/esewa-service/internal/domain/ports"
	"github.com/shopspring/decimal"
)

// SessionState tracks where a payment session is in its lifecycle.
type SessionState string

const (
	// SessionStateCreated: identity and secret known, no signature yet.
	SessionStateCreated SessionState = "CREATED"
	// SessionStateSigned: CreateSignature has run; amount, uuid and the
	// outbound signature are recorded.
	SessionStateSigned SessionState = "SIGNED"
	// SessionStateVerified / SessionStateRejected: terminal outcomes of
	// VerifySignature.
	SessionStateVerified SessionState = "VERIFIED"
	SessionStateRejected SessionState = "REJECTED"
	// SessionStateStatusKnown: a remote status fetch succeeded. Orthogonal
	// to the verify branch; a pure polling flow reaches this without ever
	// seeing a callback.
	SessionStateStatusKnown SessionState = "STATUS_KNOWN"
)

// VerifyMode selects how VerifySignature checks an inbound callback.
type VerifyMode int

const (
	// VerifyModeEcho compares the callback's claimed signature against the
	// signature this session computed for its own outbound request. This
	// reproduces the upstream integration's observed behavior: it proves
	// the gateway echoed back exactly what we signed, not that the
	// callback's own declared field set was signed with the secret.
	VerifyModeEcho VerifyMode = iota

	// VerifyModeRecompute re-computes the HMAC over the callback's declared
	// field order with the merchant secret and compares it against the
	// callback's claimed signature. Strictly stronger than echo mode.
	VerifyModeRecompute
)

// Fallback defaults used when configuration omits a value. Using any of
// these in production is a misconfiguration; SessionConfig emits a warning
// through WarnFunc when one is applied.
const (
	DefaultProductCode = "EPAYTEST"
	DefaultSecretKey   = "8gBm/:&EnhH.1/q"
	DefaultSuccessURL  = "http://localhost:8000/success/"
	DefaultFailureURL  = "http://localhost:8000/failure/"
)

// Default charge fields for the hosted payment form. The integration only
// supports zero delivery/service/tax charges; total_amount equals amount.
const (
	defaultDeliveryCharge = "0"
	defaultServiceCharge  = "0"
	defaultTaxAmount      = "0"
)

// SessionConfig is the explicit configuration a payment session resolves
// once at construction. No ambient state is read inside core logic; the
// caller supplies every value, and omissions degrade to documented defaults
// with a warning rather than a hard failure.
type SessionConfig struct {
	ProductCode string
	SecretKey   string
	SuccessURL  string
	FailureURL  string

	// Environment selects the test or production status endpoint. Resolved
	// here rather than per call so a session cannot drift between
	// environments mid-lifecycle.
	Environment string

	VerifyMode VerifyMode

	// WarnFunc receives a message whenever a fallback default replaces a
	// missing value. Nil disables the warnings.
	WarnFunc func(msg string)
}

func (c *SessionConfig) warn(msg string) {
	if c.WarnFunc != nil {
		c.WarnFunc(msg)
	}
}

func (c *SessionConfig) applyDefaults() {
	if c.ProductCode == "" {
		c.ProductCode = DefaultProductCode
	}
	if c.SecretKey == "" {
		c.warn("using default secret key; configure an explicit merchant secret")
		c.SecretKey = DefaultSecretKey
	}
	if c.SuccessURL == "" {
		c.warn("using default success URL; configure an explicit success URL")
		c.SuccessURL = DefaultSuccessURL
	}
	if c.FailureURL == "" {
		c.warn("using default failure URL; configure an explicit failure URL")
		c.FailureURL = DefaultFailureURL
	}
	if c.Environment == "" {
		c.Environment = ports.EnvironmentTest
	}
}

// FormField is one hidden field of the hosted payment form. Order matters:
// the rendered form preserves the slice order.
type FormField struct {
	Name  string
	Value string
}

// PaymentSession owns one transaction's lifecycle from signing through
// callback verification and status resolution. A session is not safe for
// concurrent mutation; distinct sessions share no state and may be used from
// independent goroutines freely.
type PaymentSession struct {
	config SessionConfig
	status ports.StatusAdapter

	state           SessionState
	totalAmount     decimal.Decimal
	transactionUUID string
	signature       string
	lastStatus      TransactionStatus
}

// NewPaymentSession creates a session in the CREATED state. The status
// adapter may be nil for sign/verify-only usage; FetchStatus then fails.
func NewPaymentSession(cfg SessionConfig, status ports.StatusAdapter) *PaymentSession {
	cfg.applyDefaults()
	return &PaymentSession{
		config:     cfg,
		status:     status,
		state:      SessionStateCreated,
		lastStatus: StatusUnknown,
	}
}

// RestoreSignedSession rebuilds a session in the SIGNED state from
// previously persisted values, e.g. when a callback arrives on a different
// process than the one that signed the request. The signature is trusted as
// stored; it is not recomputed.
func RestoreSignedSession(cfg SessionConfig, status ports.StatusAdapter, totalAmount decimal.Decimal, transactionUUID, signature string) *PaymentSession {
	s := NewPaymentSession(cfg, status)
	s.totalAmount = totalAmount
	s.transactionUUID = transactionUUID
	s.signature = signature
	s.state = SessionStateSigned
	return s
}

// CreateSignature signs the transaction identity with the fixed outbound
// field order and moves the session to SIGNED, recording amount, uuid and
// signature. Calling it again replaces all three; sessions should be
// treated as single-use, but re-signing is permitted to match the
// gateway-observed contract.
func (s *PaymentSession) CreateSignature(totalAmount decimal.Decimal, transactionUUID string) (string, error) {
	values := map[string]string{
		FieldTotalAmount:     FormatAmount(totalAmount),
		FieldTransactionUUID: transactionUUID,
		FieldProductCode:     s.config.ProductCode,
	}
	signature, err := Sign(OutboundSignedFields, values, s.config.SecretKey)
	if err != nil {
		return "", err
	}

	s.totalAmount = totalAmount
	s.transactionUUID = transactionUUID
	s.signature = signature
	s.state = SessionStateSigned
	return signature, nil
}

// VerifySignature decodes a base64 JSON callback payload and checks its
// signature. The payload source is untrusted, so verification never returns
// an error: malformed base64, malformed JSON, a non-object top level and
// missing required fields all fold into (false, nil). A deterministic
// answer lets callback handlers always produce a definite HTTP response.
//
// On success the session moves to VERIFIED and the decoded payload is
// returned; on any failure it moves to REJECTED and the payload is withheld.
func (s *PaymentSession) VerifySignature(encodedPayload string) (bool, CallbackPayload) {
	payload, err := DecodeCallbackPayload(encodedPayload)
	if err != nil {
		s.state = SessionStateRejected
		return false, nil
	}

	claimed, ok := payload[FieldSignature]
	if !ok {
		s.state = SessionStateRejected
		return false, nil
	}

	// Reconstruct the canonical message over the payload's self-declared
	// field order. Even in echo mode a payload that cannot produce its own
	// message is rejected outright.
	message, err := payload.Message()
	if err != nil {
		s.state = SessionStateRejected
		return false, nil
	}

	var valid bool
	switch s.config.VerifyMode {
	case VerifyModeRecompute:
		expected := SignMessage(message, s.config.SecretKey)
		valid = SignaturesEqual(expected, claimed)
	default:
		// Echo mode: compare against the locally cached outbound
		// signature. An unsigned session has nothing to compare against.
		if s.state != SessionStateSigned || s.signature == "" {
			s.state = SessionStateRejected
			return false, nil
		}
		valid = SignaturesEqual(s.signature, claimed)
	}

	if !valid {
		s.state = SessionStateRejected
		return false, nil
	}
	s.state = SessionStateVerified
	return true, payload
}

// FetchStatus queries the remote status endpoint for this transaction. A
// missing or unrecognized status value resolves to StatusUnknown and is not
// an error; transport and HTTP failures surface as *RemoteStatusError from
// the adapter, untouched.
func (s *PaymentSession) FetchStatus(ctx context.Context) (TransactionStatus, error) {
	if s.status == nil {
		return StatusUnknown, NewDomainError(ErrorCodeStatusRemote, "no status adapter configured")
	}

	raw, err := s.status.GetStatus(ctx, &ports.StatusRequest{
		ProductCode:     s.config.ProductCode,
		TotalAmount:     FormatAmount(s.totalAmount),
		TransactionUUID: s.transactionUUID,
		Environment:     s.config.Environment,
	})
	if err != nil {
		return StatusUnknown, err
	}

	s.lastStatus = ParseStatus(raw)
	s.state = SessionStateStatusKnown
	return s.lastStatus, nil
}

// IsCompleted reports whether the remote status is COMPLETE. Derived query
// over FetchStatus; no additional state.
func (s *PaymentSession) IsCompleted(ctx context.Context) (bool, error) {
	status, err := s.FetchStatus(ctx)
	if err != nil {
		return false, err
	}
	return status == StatusComplete, nil
}

// FormFields returns the hosted payment form field set in the exact order
// the gateway documents. Requires a signed session.
func (s *PaymentSession) FormFields() ([]FormField, error) {
	if s.state == SessionStateCreated || s.signature == "" {
		return nil, ErrSessionNotSigned
	}
	amount := FormatAmount(s.totalAmount)
	return []FormField{
		{Name: "amount", Value: amount},
		{Name: "product_delivery_charge", Value: defaultDeliveryCharge},
		{Name: "product_service_charge", Value: defaultServiceCharge},
		{Name: FieldTotalAmount, Value: amount},
		{Name: "tax_amount", Value: defaultTaxAmount},
		{Name: FieldProductCode, Value: s.config.ProductCode},
		{Name: FieldTransactionUUID, Value: s.transactionUUID},
		{Name: "success_url", Value: s.config.SuccessURL},
		{Name: "failure_url", Value: s.config.FailureURL},
		{Name: FieldSignedFieldNames, Value: "total_amount,transaction_uuid,product_code"},
		{Name: FieldSignature, Value: s.signature},
	}, nil
}

// Equal reports whether two sessions share the same merchant configuration:
// secret key and product code. Amount, uuid and signature are intentionally
// excluded; equality models "same merchant", not "same transaction".
// Comparing against nil is simply not equal.
func (s *PaymentSession) Equal(other *PaymentSession) bool {
	if other == nil {
		return false
	}
	return s.config.SecretKey == other.config.SecretKey &&
		s.config.ProductCode == other.config.ProductCode
}

// LogTransaction emits the transaction identity and signature through the
// supplied logger. The secret key is deliberately absent.
func (s *PaymentSession) LogTransaction(logger ports.Logger) {
	logger.Info("payment transaction",
		ports.String("transaction_uuid", s.transactionUUID),
		ports.String("product_code", s.config.ProductCode),
		ports.String("total_amount", FormatAmount(s.totalAmount)),
		ports.String("signature", s.signature),
	)
}

// State returns the session's current lifecycle state.
func (s *PaymentSession) State() SessionState { return s.state }

// Signature returns the outbound signature, empty before signing.
func (s *PaymentSession) Signature() string { return s.signature }

// ProductCode returns the merchant product code.
func (s *PaymentSession) ProductCode() string { return s.config.ProductCode }

// TransactionUUID returns the transaction identifier, empty before signing.
func (s *PaymentSession) TransactionUUID() string { return s.transactionUUID }

// TotalAmount returns the signed amount.
func (s *PaymentSession) TotalAmount() decimal.Decimal { return s.totalAmount }

// LastStatus returns the most recent remote status, StatusUnknown before
// any successful fetch.
func (s *PaymentSession) LastStatus() TransactionStatus { return s.lastStatus }
