// Package gates holds the individual validation checks applied to a receipt.
// Each gate returns a Decision; gates never write or publish anything.
package gates

import (
	"github.com/tendant/receipt-ingestion/internal/metrics"
	"github.com/tendant/receipt-ingestion/pkg/pipeline"
)

// FailurePolicy says what a gate does when its collaborator errors
type FailurePolicy int

const (
	// FailOpen passes the submission when the collaborator call fails
	FailOpen FailurePolicy = iota
	// FailClosed rejects the submission when the collaborator call fails
	FailClosed
)

func (p FailurePolicy) String() string {
	if p == FailClosed {
		return "fail_closed"
	}
	return "fail_open"
}

// Gate names used in logs and metrics
const (
	NameSize     = "size"
	NameIdentity = "identity"
	NameType     = "type"
	NameSafety   = "safety"
	NameQuality  = "quality"
)

// Decision is the outcome of a single gate
type Decision struct {
	Passed bool
	Code   pipeline.Code
	Reason string
	// Err is the collaborator error, if any. On a passing decision it was absorbed.
	Err     error
	Skipped bool
}

// Label is the metrics result label for the decision
func (d Decision) Label() string {
	switch {
	case d.Passed && d.Skipped:
		return metrics.ResultSkipped
	case d.Passed && d.Err != nil:
		return metrics.ResultFailOpen
	case d.Passed:
		return metrics.ResultPass
	case d.Err != nil:
		return metrics.ResultFailClosed
	default:
		return metrics.ResultReject
	}
}

func pass() Decision {
	return Decision{Passed: true}
}

func reject(code pipeline.Code, reason string) Decision {
	return Decision{Code: code, Reason: reason}
}
