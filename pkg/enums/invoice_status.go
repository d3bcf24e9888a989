package enums

import "fmt"

// InvoiceStatus tracks the review state of a persisted invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending  InvoiceStatus = "pending"
	InvoiceStatusApproved InvoiceStatus = "approved"
	InvoiceStatusRejected InvoiceStatus = "rejected"
	InvoiceStatusSkipped  InvoiceStatus = "skipped"
)

var validInvoiceStatuses = []InvoiceStatus{
	InvoiceStatusPending,
	InvoiceStatusApproved,
	InvoiceStatusRejected,
	InvoiceStatusSkipped,
}

// String implements fmt.Stringer.
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known InvoiceStatus.
func (s InvoiceStatus) IsValid() bool {
	for _, candidate := range validInvoiceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsReviewTarget reports whether a status update may move an invoice into s.
// Pending is only ever set at creation.
func (s InvoiceStatus) IsReviewTarget() bool {
	return s == InvoiceStatusApproved || s == InvoiceStatusRejected || s == InvoiceStatusSkipped
}

// ParseInvoiceStatus converts raw input into an InvoiceStatus.
func ParseInvoiceStatus(value string) (InvoiceStatus, error) {
	for _, candidate := range validInvoiceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid invoice status %q", value)
}
