// Package ioisolate runs view bookkeeping on a connection that is not
// inside a caller's transaction, so created views and their metadata
// survive a rollback of that transaction.
package ioisolate

import (
	"context"
	"log/slog"

	"github.com/gnames/gnviews/pkg/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool gives out connections that are not used by anybody else.
type Pool interface {
	// Checkout takes a connection from the pool.
	Checkout(ctx context.Context) (db.Conn, error)

	// Checkin returns a connection received from Checkout.
	Checkin(db.Conn)
}

type pgxPool struct {
	pool *pgxpool.Pool
}

// NewPool adapts pgxpool.Pool to the Pool interface.
func NewPool(pool *pgxpool.Pool) Pool {
	return &pgxPool{pool: pool}
}

func (p *pgxPool) Checkout(ctx context.Context) (db.Conn, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (p *pgxPool) Checkin(c db.Conn) {
	if conn, ok := c.(*pgxpool.Conn); ok {
		conn.Release()
	}
}

// Isolator escapes ambient transactions.
type Isolator struct {
	pool Pool
}

// New creates an Isolator that takes extra connections from the pool.
func New(pool Pool) *Isolator {
	return &Isolator{pool: pool}
}

// state records a connection that already runs isolated for a call chain.
type state struct {
	origin db.Conn
	conn   db.Conn
	parent *state
}

type stateKey struct{}

func stateFromContext(ctx context.Context) *state {
	st, _ := ctx.Value(stateKey{}).(*state)
	return st
}

// lookup finds isolation state created for c earlier in the call chain.
// Both the original connection and the isolated one lead to the same
// state, so nested calls reuse the isolated connection.
func lookup(ctx context.Context, c db.Conn) *state {
	for st := stateFromContext(ctx); st != nil; st = st.parent {
		if st.origin == c || st.conn == c {
			return st
		}
	}
	return nil
}

func withState(ctx context.Context, origin, conn db.Conn) context.Context {
	st := &state{
		origin: origin,
		conn:   conn,
		parent: stateFromContext(ctx),
	}
	return context.WithValue(ctx, stateKey{}, st)
}

// Isolated reports whether c already runs isolated in this call chain.
func Isolated(ctx context.Context, c db.Conn) bool {
	return lookup(ctx, c) != nil
}

// Run calls fn with a connection that is outside of any transaction.
//
// If c is not in a transaction, fn runs on c. Otherwise a second
// connection is checked out of the pool for the duration of fn and
// returned afterwards, also when fn fails or panics. Nested calls with
// either connection reuse the one found in ctx.
func (i *Isolator) Run(
	ctx context.Context,
	c db.Conn,
	fn func(context.Context, db.Conn) error,
) error {
	if st := lookup(ctx, c); st != nil {
		return fn(ctx, st.conn)
	}

	if !InTransaction(c) {
		return fn(withState(ctx, c, c), c)
	}

	conn, err := i.pool.Checkout(ctx)
	if err != nil {
		return CheckoutError(err)
	}
	defer i.pool.Checkin(conn)

	slog.Debug("Checked out isolated connection")
	return fn(withState(ctx, c, conn), conn)
}

// InTransaction reports whether a connection has an open transaction.
// A pool is never in a transaction, every statement gets its own
// connection.
func InTransaction(c db.Conn) bool {
	switch v := c.(type) {
	case *pgxpool.Pool:
		return false
	case interface{ TxStatus() byte }:
		return v.TxStatus() != 'I'
	case interface{ PgConn() *pgconn.PgConn }:
		return openTx(v.PgConn())
	case interface{ Conn() *pgx.Conn }:
		conn := v.Conn()
		if conn == nil {
			return false
		}
		return openTx(conn.PgConn())
	}
	return false
}

func openTx(pc *pgconn.PgConn) bool {
	if pc == nil {
		return false
	}
	return pc.TxStatus() != 'I'
}
