// Package delivery defines the contract every transport front end fulfills.
package delivery

import "context"

// Delivery is a serving surface (HTTP today). Serve blocks until the server
// stops; shutdown is driven through the Fx lifecycle.
type Delivery interface {
	Serve(ctx context.Context) error
}
