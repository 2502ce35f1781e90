// Package trader defines the backend type tags of trading connections and the
// built-in backends for each of them.
//
// The set of backends is closed: alor-openapi-v2, tinkoff-grpc-web,
// alpaca-v2-plus and binance-v3 are compiled in (see Builtins). The custom
// type is the single extension point: its implementation is a Go plugin found
// at the location stored in the document's url field and is trusted as-is
// (see LoadPlugin).
//
// Every backend is constructed from the full connection document. Credentials
// are read from the document itself or from its broker sub-document, which is
// how trader documents embed the broker they trade through.
package trader
