package domain

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// CallbackPayload is the decoded confirmation the gateway sends after a
// payment attempt: a flat mapping from field name to string value. It
// always carries signed_field_names and signature plus the business fields
// the former names. The payload is decoded, verified and discarded;
// persisting it is a collaborator concern.
type CallbackPayload map[string]string

// DecodeCallbackPayload decodes a base64-encoded JSON callback body into a
// CallbackPayload. The input is attacker-controlled, so every failure mode
// is reported as an error for the session to fold into a negative verify
// result; nothing here panics or partially succeeds.
func DecodeCallbackPayload(encoded string) (CallbackPayload, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, WrapError(ErrorCodeCallbackDecode, "invalid base64 payload", err)
	}
	if !utf8.Valid(raw) {
		return nil, NewDomainError(ErrorCodeCallbackDecode, "payload is not valid UTF-8")
	}

	var payload CallbackPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, WrapError(ErrorCodeCallbackMalformed, "payload is not a flat JSON string map", err)
	}
	if payload == nil {
		return nil, NewDomainError(ErrorCodeCallbackMalformed, "payload top level is null")
	}
	return payload, nil
}

// Signature returns the signature the payload claims for itself.
func (p CallbackPayload) Signature() string {
	return p[FieldSignature]
}

// TransactionUUID returns the transaction identifier named in the payload.
func (p CallbackPayload) TransactionUUID() string {
	return p[FieldTransactionUUID]
}

// Status returns the transaction status carried by the payload, if any.
func (p CallbackPayload) Status() TransactionStatus {
	return ParseStatus(p["status"])
}

// SignedFieldNames returns the field order the payload declares for its own
// signature. The order is taken from the payload itself, not assumed: the
// gateway signs the literal list it sends, so reordering it locally breaks
// verification.
func (p CallbackPayload) SignedFieldNames() ([]string, error) {
	declared, ok := p[FieldSignedFieldNames]
	if !ok {
		return nil, NewDomainError(ErrorCodeCallbackMissingField, "payload has no signed_field_names")
	}
	return strings.Split(declared, ","), nil
}

// Message reconstructs the canonical message over the payload's declared
// field order. Fails if the payload names a field it does not carry.
func (p CallbackPayload) Message() (string, error) {
	fields, err := p.SignedFieldNames()
	if err != nil {
		return "", err
	}
	return BuildMessage(fields, p)
}
