package keys

import (
	"context"

	sstmodels "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Models"
	interfaces "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Repository/Interfaces"
)

// BootstrapResult reports what BootstrapAdminKey did. CreatedKey is set only
// when a key was created on this call; it is the one time the key value is
// ever available, the store holds no recovery secret.
type BootstrapResult struct {
	Created    bool
	CreatedKey string
}

// BootstrapAdminKey ensures at least one admin key exists, creating one when
// the admin set is empty. Idempotent across restarts: a second call against
// the same store state is a no-op.
//
// The emptiness check and the create are separate store calls, so two
// processes bootstrapping against the same store at once can each create a
// key. Closing that race needs a create-if-absent primitive at the store
// boundary.
func BootstrapAdminKey(ctx context.Context, store interfaces.KeyStore) (BootstrapResult, error) {
	count, err := store.Count(ctx, interfaces.ScopeAdmin)
	if err != nil {
		return BootstrapResult{}, err
	}
	if count > 0 {
		return BootstrapResult{}, nil
	}

	key, err := Generate(AdminKeyFormatPrefix)
	if err != nil {
		return BootstrapResult{}, err
	}

	if err := store.Insert(ctx, interfaces.ScopeAdmin, key, sstmodels.AdminOwner); err != nil {
		return BootstrapResult{}, err
	}

	return BootstrapResult{Created: true, CreatedKey: key}, nil
}
