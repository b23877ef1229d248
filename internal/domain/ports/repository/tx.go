package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager runs fn inside a database transaction and passes the
// handle on as tx. Repositories accept a nil tx and fall back to the pool.
//
// USAGE
// tm.WithTx(ctx, opts, func(ctx context.Context, tx Tx) error {
// u, err := users.FindByID(ctx, tx, id)
// ...
// return users.Save(ctx, tx, u)
// })
//
// The concrete type of tx is infra-defined (pgx.Tx for Postgres).
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
