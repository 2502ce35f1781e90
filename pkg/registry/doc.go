// Package registry keeps at most one live backend connection per document
// identity.
//
// A connection document carries an `_id`, a `type` tag and backend
// parameters. GetOrCreateConnection resolves the type tag to a
// trader.Factory, constructs the trader once and caches it under the
// document's `_id`. GetOrCreatePubSubConnection does the same for the hosted
// pub/sub service and subscribes the fresh connection to the telegram and
// ppp channels.
//
// Cached entries are returned unchanged even if the document changed since
// construction. Call Evict to force a rebuild.
//
// Concurrent calls for the same new identity share one construction:
//
//	reg := registry.New(registry.WithLogger(logger))
//	defer reg.Close()
//
//	t, err := reg.GetOrCreateConnection(ctx, doc)
//	if errors.Is(err, registry.ErrBackendResolution) {
//		// unknown type or plugin failed to load
//	}
package registry
