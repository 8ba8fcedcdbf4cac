package gates

import (
	"fmt"

	"github.com/tendant/receipt-ingestion/pkg/pipeline"
)

// AllowList is the set of MIME types accepted for relocation
type AllowList struct {
	mimes map[string]bool
}

// NewAllowList builds an allow-list from MIME strings (already normalised)
func NewAllowList(mimes []string) AllowList {
	a := AllowList{mimes: make(map[string]bool, len(mimes))}
	for _, m := range mimes {
		a.mimes[m] = true
	}
	return a
}

// Check rejects UNKNOWN and any type outside the list
func (a AllowList) Check(m MediaType) Decision {
	if m == Unknown {
		return reject(pipeline.CodeUnsupportedType, "Content type could not be determined or is not supported.")
	}
	if !a.mimes[m.MIME()] {
		return reject(pipeline.CodeUnsupportedType, fmt.Sprintf("Content type %s not allowed.", m.MIME()))
	}
	return pass()
}
