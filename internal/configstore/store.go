package configstore

import (
	"context"
)

// Store is the persistence boundary for config documents. Read returns
// (nil, nil) when no document exists for the key; schema migration is out of
// scope, so backends store and return documents as-is.
type Store interface {
	// Read fetches the stored document for (serviceID, companyID), or nil
	// when the company has never saved one.
	Read(ctx context.Context, serviceID, companyID string) (*ConfigDocument, error)

	// Write persists the document for (serviceID, companyID), replacing any
	// previous version atomically.
	Write(ctx context.Context, serviceID, companyID string, doc ConfigDocument) error
}
