// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package destination

import (
	"context"

	"github.com/mia-platform/essink/internal/bulk"
)

// BulkSubmitter delivers one assembled bulk request to a search engine.
// Implementations must be safe to call repeatedly with the same request:
// the pipeline resubmits the identical request on retry.
type BulkSubmitter interface {
	SubmitBulk(ctx context.Context, request *bulk.Request, params map[string]string) (*bulk.Result, error)
}
