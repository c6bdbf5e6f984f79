package domain

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// Field names eSewa uses in signed messages and callback payloads.
const (
	FieldTotalAmount      = "total_amount"
	FieldTransactionUUID  = "transaction_uuid"
	FieldProductCode      = "product_code"
	FieldSignedFieldNames = "signed_field_names"
	FieldSignature        = "signature"
)

// OutboundSignedFields is the fixed field order eSewa expects for request
// signing. Inbound callbacks declare their own order via signed_field_names;
// this one applies only to signatures we originate.
var OutboundSignedFields = []string{FieldTotalAmount, FieldTransactionUUID, FieldProductCode}

// BuildMessage constructs the canonical signing message: "name=value" for
// each field in the supplied order, joined by single commas, no surrounding
// whitespace or separators. Order is significant and is taken literally:
// the gateway computes and checks the same literal ordering, so the message
// is never sorted or otherwise canonicalized.
//
// Every name in fieldsInOrder must have a value; a missing field yields a
// *MissingFieldError.
func BuildMessage(fieldsInOrder []string, values map[string]string) (string, error) {
	parts := make([]string, 0, len(fieldsInOrder))
	for _, name := range fieldsInOrder {
		value, ok := values[name]
		if !ok {
			return "", &MissingFieldError{Field: name}
		}
		parts = append(parts, name+"="+value)
	}
	return strings.Join(parts, ","), nil
}

// Sign computes the eSewa request signature: HMAC-SHA256 over the UTF-8
// canonical message keyed by the UTF-8 secret, base64-encoded with the
// standard alphabet and padding. Pure function: same inputs always produce
// the same signature.
func Sign(fieldsInOrder []string, values map[string]string, secret string) (string, error) {
	message, err := BuildMessage(fieldsInOrder, values)
	if err != nil {
		return "", err
	}
	return SignMessage(message, secret), nil
}

// SignMessage computes the signature over an already-canonical message.
func SignMessage(message, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// SignaturesEqual compares two signature strings as opaque, case-sensitive
// values in constant time. Full-string equality only; no normalization.
func SignaturesEqual(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
