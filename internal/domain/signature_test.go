package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fixed regression vector: any compliant implementation must reproduce this
// signature byte for byte for these inputs.
const (
	vectorSecret    = "8gBm/:&EnhH.1/q"
	vectorMessage   = "total_amount=100,transaction_uuid=11-201-13,product_code=EPAYTEST"
	vectorSignature = "5DZywcrTKD0gia/rsSMcrRHmJl+4Tbol6S+lWgdJ94E="
)

func vectorValues() map[string]string {
	return map[string]string{
		"total_amount":     "100",
		"transaction_uuid": "11-201-13",
		"product_code":     "EPAYTEST",
	}
}

func TestBuildMessage(t *testing.T) {
	tests := []struct {
		name    string
		fields  []string
		values  map[string]string
		want    string
		missing string
	}{
		{
			name:   "fixed outbound order",
			fields: OutboundSignedFields,
			values: vectorValues(),
			want:   vectorMessage,
		},
		{
			name:   "single field",
			fields: []string{"total_amount"},
			values: vectorValues(),
			want:   "total_amount=100",
		},
		{
			name:   "order is taken literally, not sorted",
			fields: []string{"product_code", "total_amount", "transaction_uuid"},
			values: vectorValues(),
			want:   "product_code=EPAYTEST,total_amount=100,transaction_uuid=11-201-13",
		},
		{
			name:   "empty value is preserved, not treated as missing",
			fields: []string{"total_amount", "transaction_uuid"},
			values: map[string]string{"total_amount": "100", "transaction_uuid": ""},
			want:   "total_amount=100,transaction_uuid=",
		},
		{
			name:    "missing field fails",
			fields:  []string{"total_amount", "transaction_uuid", "product_code"},
			values:  map[string]string{"total_amount": "100", "product_code": "EPAYTEST"},
			missing: "transaction_uuid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildMessage(tt.fields, tt.values)
			if tt.missing != "" {
				var missingErr *MissingFieldError
				require.ErrorAs(t, err, &missingErr)
				assert.Equal(t, tt.missing, missingErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSign_FixedVector(t *testing.T) {
	got, err := Sign(OutboundSignedFields, vectorValues(), vectorSecret)
	require.NoError(t, err)
	assert.Equal(t, vectorSignature, got)
}

func TestSign_Deterministic(t *testing.T) {
	first, err := Sign(OutboundSignedFields, vectorValues(), vectorSecret)
	require.NoError(t, err)
	second, err := Sign(OutboundSignedFields, vectorValues(), vectorSecret)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSign_OrderSensitive(t *testing.T) {
	values := vectorValues()

	forward, err := Sign(OutboundSignedFields, values, vectorSecret)
	require.NoError(t, err)

	permuted, err := Sign([]string{"product_code", "transaction_uuid", "total_amount"}, values, vectorSecret)
	require.NoError(t, err)

	assert.NotEqual(t, forward, permuted)
}

func TestSign_KeySensitive(t *testing.T) {
	values := vectorValues()

	sig1, err := Sign(OutboundSignedFields, values, "secret-one")
	require.NoError(t, err)
	sig2, err := Sign(OutboundSignedFields, values, "secret-two")
	require.NoError(t, err)

	assert.NotEqual(t, sig1, sig2)
}

func TestSign_MissingFieldNeverDefaults(t *testing.T) {
	values := vectorValues()
	delete(values, "product_code")

	_, err := Sign(OutboundSignedFields, values, vectorSecret)
	var missingErr *MissingFieldError
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, "product_code", missingErr.Field)

	// The signature over the truncated field list differs from the one the
	// failed call would have produced had it defaulted the value to "".
	withEmpty := vectorValues()
	withEmpty["product_code"] = ""
	sigEmpty, err := Sign(OutboundSignedFields, withEmpty, vectorSecret)
	require.NoError(t, err)
	assert.NotEqual(t, vectorSignature, sigEmpty)
}

func TestSignaturesEqual(t *testing.T) {
	assert.True(t, SignaturesEqual(vectorSignature, vectorSignature))
	assert.False(t, SignaturesEqual(vectorSignature, vectorSignature[:len(vectorSignature)-1]))
	assert.False(t, SignaturesEqual("", vectorSignature))
	// Case-sensitive, no normalization.
	assert.False(t, SignaturesEqual("abc=", "ABC="))
}
