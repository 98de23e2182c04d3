package repository

import "context"

// Store hands out repositories bound to one database handle.
// Repositories obtained from the tx argument of Transaction share that transaction.
type Store interface {
	Orders() OrderRepository
	Products() ProductRepository
	Carts() CartRepository
	Users() UserRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
