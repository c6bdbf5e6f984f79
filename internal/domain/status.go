package domain

// TransactionStatus represents the gateway-reported lifecycle state of a
// payment attempt, as returned by the eSewa transaction status endpoint.
type TransactionStatus string

const (
	StatusComplete      TransactionStatus = "COMPLETE"
	StatusPending       TransactionStatus = "PENDING"
	StatusFullRefund    TransactionStatus = "FULL_REFUND"
	StatusPartialRefund TransactionStatus = "PARTIAL_REFUND"
	StatusAmbiguous     TransactionStatus = "AMBIGUOUS"
	StatusNotFound      TransactionStatus = "NOT_FOUND"
	StatusCanceled      TransactionStatus = "CANCELED"

	// StatusUnknown is the local fallback when the status field is absent
	// or carries a value we don't recognize. Absence is neither success
	// nor failure.
	StatusUnknown TransactionStatus = "UNKNOWN"
)

var knownStatuses = map[TransactionStatus]struct{}{
	StatusComplete:      {},
	StatusPending:       {},
	StatusFullRefund:    {},
	StatusPartialRefund: {},
	StatusAmbiguous:     {},
	StatusNotFound:      {},
	StatusCanceled:      {},
}

// ParseStatus maps a raw status value from the gateway to a
// TransactionStatus. Empty or unrecognized values map to StatusUnknown.
func ParseStatus(raw string) TransactionStatus {
	s := TransactionStatus(raw)
	if _, ok := knownStatuses[s]; ok {
		return s
	}
	return StatusUnknown
}

// IsKnown reports whether the status is one of the gateway-defined values
// (i.e. not the local UNKNOWN fallback).
func (s TransactionStatus) IsKnown() bool {
	_, ok := knownStatuses[s]
	return ok
}
