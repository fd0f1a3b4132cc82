// Package storage abstracts blob storage. The platform's production
// object store is external; the closure engine only deletes blobs.
package storage

import "context"

// BlobStore is the storage surface the reapers and checkers depend on.
type BlobStore interface {
	// Delete removes a blob. Deleting a blob that does not exist is
	// success: purge retries must not fail on work already done.
	Delete(ctx context.Context, key string) error
}
