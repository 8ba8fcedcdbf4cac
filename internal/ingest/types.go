// Package ingest runs a receipt through the validation gates and hands it off
// to extraction.
package ingest

import (
	"github.com/tendant/receipt-ingestion/internal/gates"
)

// State is a step of the ingestion state machine
type State string

const (
	StateReceived       State = "RECEIVED"
	StateSizeChecked    State = "SIZE_CHECKED"
	StateOwnerVerified  State = "OWNER_VERIFIED"
	StateTypeClassified State = "TYPE_CLASSIFIED"
	StateTypeAllowed    State = "TYPE_ALLOWED"
	StateSafetyChecked  State = "SAFETY_CHECKED"
	StateQualityChecked State = "QUALITY_CHECKED"
	StateRelocated      State = "RELOCATED"
	StateAnnounced      State = "ANNOUNCED"
	StateRejected       State = "REJECTED"
	StateFailed         State = "FAILED"
)

// Submission is the canonical request every ingress shape is reduced to
type Submission struct {
	OwnerID string
	Payload []byte
}

// Result records how far a submission got
type Result struct {
	RunID      string
	State      State
	Trail      []State
	Gates      []string
	MediaType  gates.MediaType
	StorageKey string
	FilePath   string
	DeliveryID string
}

func (r *Result) advance(s State) {
	r.State = s
	r.Trail = append(r.Trail, s)
}
