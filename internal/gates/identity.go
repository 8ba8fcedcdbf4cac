package gates

import (
	"context"
	"errors"
	"fmt"

	"github.com/tendant/receipt-ingestion/internal/identity"
	"github.com/tendant/receipt-ingestion/pkg/pipeline"
)

// IdentityPolicy: an owner that cannot be verified is never accepted
const IdentityPolicy = FailClosed

// IdentityGate checks that the owner exists and is enabled
type IdentityGate struct {
	dir identity.Directory
}

func NewIdentityGate(dir identity.Directory) *IdentityGate {
	return &IdentityGate{dir: dir}
}

func (g *IdentityGate) Check(ctx context.Context, ownerID string) Decision {
	acct, err := g.dir.Lookup(ctx, ownerID)
	switch {
	case errors.Is(err, identity.ErrNotFound):
		return reject(pipeline.CodeUnknownOwner, fmt.Sprintf("Unknown user ID %s.", ownerID))
	case err != nil:
		d := reject(pipeline.CodeIdentityCheckFailed, fmt.Sprintf("Could not verify user ID %s.", ownerID))
		d.Err = err
		return d
	case acct.Disabled:
		return reject(pipeline.CodeOwnerDisabled, fmt.Sprintf("User ID %s is disabled.", ownerID))
	}
	return pass()
}
