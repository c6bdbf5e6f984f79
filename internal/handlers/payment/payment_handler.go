package payment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nepalpay/esewa-service/internal/adapters/postgres"
	"github.com/nepalpay/esewa-service/internal/adapters/secrets"
	"github.com/nepalpay/esewa-service/internal/config"
	"github.com/nepalpay/esewa-service/internal/domain"
	"github.com/nepalpay/esewa-service/internal/domain/models"
	"github.com/nepalpay/esewa-service/internal/domain/ports"
	pkgerrors "github.com/nepalpay/esewa-service/pkg/errors"
	"github.com/nepalpay/esewa-service/pkg/observability"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SessionStore defines persistence operations for payment sessions
type SessionStore interface {
	CreateSession(ctx context.Context, record *models.SessionRecord) error
	GetByTransactionUUID(ctx context.Context, transactionUUID string) (*models.SessionRecord, error)
	MarkVerified(ctx context.Context, transactionUUID, state string) error
	UpdateStatus(ctx context.Context, transactionUUID, status string) error
}

// FormRenderer renders signed sessions as gateway POST forms
type FormRenderer interface {
	RenderFields(session *domain.PaymentSession) (string, error)
	RenderForm(session *domain.PaymentSession) (string, error)
}

// Handler serves the payment form, callback and status endpoints
type Handler struct {
	store         SessionStore
	statusAdapter ports.StatusAdapter
	secretManager ports.SecretManagerAdapter
	formRenderer  FormRenderer
	logger        *zap.Logger
	cfg           config.EsewaConfig
}

// NewHandler creates a new payment handler
func NewHandler(
	store SessionStore,
	statusAdapter ports.StatusAdapter,
	secretManager ports.SecretManagerAdapter,
	formRenderer FormRenderer,
	cfg config.EsewaConfig,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		store:         store,
		statusAdapter: statusAdapter,
		secretManager: secretManager,
		formRenderer:  formRenderer,
		cfg:           cfg,
		logger:        logger,
	}
}

// RegisterRoutes attaches the payment endpoints to a mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/payments/form", h.GetPaymentForm)
	mux.HandleFunc("POST /api/v1/payments/callback", h.HandleCallback)
	mux.HandleFunc("GET /api/v1/payments/status", h.GetStatus)
}

// verifyMode maps the configured mode string onto the domain type
func (h *Handler) verifyMode() domain.VerifyMode {
	if h.cfg.VerifyMode == "recompute" {
		return domain.VerifyModeRecompute
	}
	return domain.VerifyModeEcho
}

// resolveSecret returns the signing secret for the configured product code.
// An explicitly configured key wins; otherwise the secret manager is
// consulted. An empty result falls through to the sandbox default inside
// the session, with a warning.
func (h *Handler) resolveSecret(ctx context.Context, productCode string) string {
	if h.cfg.SecretKey != "" {
		return h.cfg.SecretKey
	}
	if h.secretManager == nil {
		return ""
	}

	secret, err := h.secretManager.GetSecret(ctx, secrets.MerchantSecretPath(productCode))
	if err != nil {
		h.logger.Warn("failed to resolve merchant secret, falling back to default",
			zap.String("product_code", productCode),
			zap.Error(err),
		)
		return ""
	}
	return secret.Value
}

// sessionConfig builds a domain session config for the configured merchant
func (h *Handler) sessionConfig(ctx context.Context) domain.SessionConfig {
	productCode := h.cfg.ProductCode
	if productCode == "" {
		productCode = domain.DefaultProductCode
	}

	return domain.SessionConfig{
		ProductCode: productCode,
		SecretKey:   h.resolveSecret(ctx, productCode),
		SuccessURL:  h.cfg.SuccessURL,
		FailureURL:  h.cfg.FailureURL,
		Environment: h.cfg.Environment,
		VerifyMode:  h.verifyMode(),
		WarnFunc: func(msg string) {
			h.logger.Warn(msg, zap.String("product_code", productCode))
		},
	}
}

type formResponse struct {
	TransactionUUID string             `json:"transaction_uuid"`
	ProductCode     string             `json:"product_code"`
	TotalAmount     string             `json:"total_amount"`
	Signature       string             `json:"signature"`
	Fields          []domain.FormField `json:"fields"`
	FormHTML        string             `json:"form_html"`
}

// GetPaymentForm signs a new payment request and returns the gateway form
// GET /api/v1/payments/form?amount=100.50&transaction_uuid=...
func (h *Handler) GetPaymentForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rawAmount := r.URL.Query().Get("amount")
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil || amount.IsNegative() || amount.IsZero() {
		verr := pkgerrors.NewValidationError("amount", "must be a positive decimal")
		h.logger.Warn("rejected payment form request",
			zap.String("amount", rawAmount),
			zap.Error(verr),
		)
		h.writeError(w, http.StatusBadRequest, verr.Error())
		return
	}

	transactionUUID := r.URL.Query().Get("transaction_uuid")
	if transactionUUID == "" {
		transactionUUID = uuid.NewString()
	}

	session := domain.NewPaymentSession(h.sessionConfig(ctx), h.statusAdapter)
	signature, err := session.CreateSignature(amount, transactionUUID)
	if err != nil {
		h.logger.Error("failed to sign payment request",
			zap.String("transaction_uuid", transactionUUID),
			zap.Error(err),
		)
		h.writeError(w, http.StatusInternalServerError, "failed to sign payment request")
		return
	}
	observability.RecordSignatureCreated(session.ProductCode(), h.cfg.Environment)

	record := &models.SessionRecord{
		ID:              uuid.New(),
		ProductCode:     session.ProductCode(),
		TransactionUUID: transactionUUID,
		TotalAmount:     amount,
		Signature:       signature,
		State:           string(session.State()),
		Status:          string(domain.StatusUnknown),
	}
	if err := h.store.CreateSession(ctx, record); err != nil {
		h.logger.Error("failed to persist payment session",
			zap.String("transaction_uuid", transactionUUID),
			zap.Error(err),
		)
		h.writeError(w, http.StatusInternalServerError, "failed to persist payment session")
		return
	}

	fields, err := session.FormFields()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to build form fields")
		return
	}

	formHTML, err := h.formRenderer.RenderForm(session)
	if err != nil {
		h.logger.Error("failed to render payment form",
			zap.String("transaction_uuid", transactionUUID),
			zap.Error(err),
		)
		h.writeError(w, http.StatusInternalServerError, "failed to render payment form")
		return
	}

	h.logger.Info("issued payment form",
		zap.String("transaction_uuid", transactionUUID),
		zap.String("product_code", session.ProductCode()),
		zap.String("total_amount", domain.FormatAmount(amount)),
	)

	h.writeJSON(w, http.StatusOK, formResponse{
		TransactionUUID: transactionUUID,
		ProductCode:     session.ProductCode(),
		TotalAmount:     domain.FormatAmount(amount),
		Signature:       signature,
		Fields:          fields,
		FormHTML:        formHTML,
	})
}

type callbackResponse struct {
	TransactionUUID string `json:"transaction_uuid,omitempty"`
	Status          string `json:"status,omitempty"`
	Verified        bool   `json:"verified"`
}

// HandleCallback verifies a gateway callback
// POST /api/v1/payments/callback with the base64 payload as the body,
// or ?data=... as delivered by the gateway redirect
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	encoded := r.URL.Query().Get("data")
	if encoded == "" {
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		encoded = strings.TrimSpace(string(body))
	} else {
		// Query parsing decodes "+" as a space. The gateway sends
		// standard-alphabet base64, which never contains spaces, so any
		// space here was a "+" on the wire.
		encoded = strings.ReplaceAll(encoded, " ", "+")
	}

	// Peek at the payload to find which session it belongs to. Decode
	// failures still produce a negative verification result, not an error.
	payload, err := domain.DecodeCallbackPayload(encoded)
	if err != nil {
		h.logger.Warn("received undecodable callback", zap.Error(err))
		observability.RecordCallbackVerification(h.cfg.ProductCode, false, h.cfg.VerifyMode)
		h.writeJSON(w, http.StatusOK, callbackResponse{Verified: false})
		return
	}

	transactionUUID := payload.TransactionUUID()
	record, err := h.store.GetByTransactionUUID(ctx, transactionUUID)
	if err != nil {
		h.logger.Warn("callback for unknown payment session",
			zap.String("transaction_uuid", transactionUUID),
			zap.Error(err),
		)
		observability.RecordCallbackVerification(h.cfg.ProductCode, false, h.cfg.VerifyMode)
		h.writeJSON(w, http.StatusOK, callbackResponse{
			TransactionUUID: transactionUUID,
			Verified:        false,
		})
		return
	}

	session := domain.RestoreSignedSession(h.sessionConfig(ctx), h.statusAdapter,
		record.TotalAmount, record.TransactionUUID, record.Signature)

	verified, _ := session.VerifySignature(encoded)
	observability.RecordCallbackVerification(session.ProductCode(), verified, h.cfg.VerifyMode)

	if err := h.store.MarkVerified(ctx, transactionUUID, string(session.State())); err != nil {
		h.logger.Error("failed to record verification outcome",
			zap.String("transaction_uuid", transactionUUID),
			zap.Error(err),
		)
	}

	h.logger.Info("processed gateway callback",
		zap.String("transaction_uuid", transactionUUID),
		zap.Bool("verified", verified),
		zap.String("callback_status", string(payload.Status())),
	)

	h.writeJSON(w, http.StatusOK, callbackResponse{
		TransactionUUID: transactionUUID,
		Status:          string(payload.Status()),
		Verified:        verified,
	})
}

type statusResponse struct {
	TransactionUUID string `json:"transaction_uuid"`
	Status          string `json:"status"`
	Completed       bool   `json:"completed"`
}

// GetStatus fetches the current gateway status for a session
// GET /api/v1/payments/status?transaction_uuid=...
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	transactionUUID := r.URL.Query().Get("transaction_uuid")
	if transactionUUID == "" {
		h.writeError(w, http.StatusBadRequest, "transaction_uuid is required")
		return
	}

	record, err := h.store.GetByTransactionUUID(ctx, transactionUUID)
	if err != nil {
		if errors.Is(err, postgres.ErrSessionNotFound) {
			h.writeError(w, http.StatusNotFound, "payment session not found")
			return
		}
		h.logger.Error("failed to load payment session",
			zap.String("transaction_uuid", transactionUUID),
			zap.Error(err),
		)
		h.writeError(w, http.StatusInternalServerError, "failed to load payment session")
		return
	}

	session := domain.RestoreSignedSession(h.sessionConfig(ctx), h.statusAdapter,
		record.TotalAmount, record.TransactionUUID, record.Signature)

	startTime := time.Now()
	status, err := session.FetchStatus(ctx)
	if err != nil {
		observability.RecordStatusFetch(session.ProductCode(), "error", time.Since(startTime).Seconds())

		var remoteErr *domain.RemoteStatusError
		if errors.As(err, &remoteErr) {
			h.logger.Error("gateway status lookup failed",
				zap.String("transaction_uuid", transactionUUID),
				zap.Int("gateway_status_code", remoteErr.StatusCode),
			)
			h.writeError(w, http.StatusBadGateway, "gateway status lookup failed")
			return
		}

		h.logger.Error("status lookup failed",
			zap.String("transaction_uuid", transactionUUID),
			zap.Error(err),
		)
		h.writeError(w, http.StatusInternalServerError, "status lookup failed")
		return
	}
	observability.RecordStatusFetch(session.ProductCode(), string(status), time.Since(startTime).Seconds())

	if err := h.store.UpdateStatus(ctx, transactionUUID, string(status)); err != nil {
		h.logger.Error("failed to persist transaction status",
			zap.String("transaction_uuid", transactionUUID),
			zap.Error(err),
		)
	}

	h.writeJSON(w, http.StatusOK, statusResponse{
		TransactionUUID: transactionUUID,
		Status:          string(status),
		Completed:       status == domain.StatusComplete,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
