package enums

import "fmt"

// QuoteStatus tracks a quote through diagnosis, approval and conversion.
type QuoteStatus string

const (
	QuoteStatusDraft             QuoteStatus = "draft"
	QuoteStatusPendingDiagnosis  QuoteStatus = "pending_diagnosis"
	QuoteStatusDiagnosisComplete QuoteStatus = "diagnosis_complete"
	QuoteStatusAwaitingApproval  QuoteStatus = "awaiting_approval"
	QuoteStatusApproved          QuoteStatus = "approved"
	QuoteStatusRejected          QuoteStatus = "rejected"
	QuoteStatusConverted         QuoteStatus = "converted"
)

var validQuoteStatuses = []QuoteStatus{
	QuoteStatusDraft,
	QuoteStatusPendingDiagnosis,
	QuoteStatusDiagnosisComplete,
	QuoteStatusAwaitingApproval,
	QuoteStatusApproved,
	QuoteStatusRejected,
	QuoteStatusConverted,
}

var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteStatusDraft:             {QuoteStatusPendingDiagnosis},
	QuoteStatusPendingDiagnosis:  {QuoteStatusDiagnosisComplete},
	QuoteStatusDiagnosisComplete: {QuoteStatusAwaitingApproval},
	QuoteStatusAwaitingApproval:  {QuoteStatusApproved, QuoteStatusRejected},
	QuoteStatusApproved:          {QuoteStatusConverted},
}

// String implements fmt.Stringer.
func (s QuoteStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known QuoteStatus.
func (s QuoteStatus) IsValid() bool {
	for _, candidate := range validQuoteStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	for _, candidate := range quoteTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// AllowsMechanicAssignment reports whether a mechanic may be (re)assigned.
func (s QuoteStatus) AllowsMechanicAssignment() bool {
	return s == QuoteStatusDraft || s == QuoteStatusPendingDiagnosis
}

// ParseQuoteStatus converts raw input into a QuoteStatus.
func ParseQuoteStatus(value string) (QuoteStatus, error) {
	for _, candidate := range validQuoteStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote status %q", value)
}
