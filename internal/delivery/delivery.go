// Package delivery defines the contract every transport entrypoint satisfies.
package delivery

import "context"

// Delivery is a long-running transport server. Implementations block in
// Serve until the listener stops.
type Delivery interface {
	Serve(ctx context.Context) error
}
