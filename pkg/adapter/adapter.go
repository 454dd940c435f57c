package adapter

import "context"

// Adapter is a protocol server bound to one endpoint.
//
// Lifecycle:
//  1. Creation: the adapter is created with its configuration
//  2. Startup: Serve() binds the endpoint and blocks until shutdown
//  3. Shutdown: cancelling the Serve context, or calling Stop(), stops
//     accepting, waits for connections and releases the endpoint
//
// Implementations must be safe for concurrent use. Stop() may be called
// concurrently with Serve().
type Adapter interface {
	// Serve starts the protocol server and blocks until the context is
	// cancelled or an unrecoverable error occurs.
	//
	// Returns:
	//   - nil on graceful shutdown
	//   - error if binding fails, accept fails fatally or connections had
	//     to be force-closed
	Serve(ctx context.Context) error

	// Stop initiates shutdown. Idempotent.
	Stop(ctx context.Context) error

	// Protocol returns the human-readable protocol name for logging and metrics.
	Protocol() string

	// Endpoint returns the configured network and address.
	Endpoint() (network, address string)
}
