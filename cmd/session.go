/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"log/slog"

	"github.com/gnames/gnviews/internal/iocatalog"
	"github.com/gnames/gnviews/internal/iodb"
	"github.com/gnames/gnviews/internal/ioisolate"
	"github.com/gnames/gnviews/internal/iometa"
	"github.com/gnames/gnviews/internal/ioviews"
	"github.com/gnames/gnviews/pkg/db"
	"github.com/gnames/gnviews/pkg/views"
	"github.com/jackc/pgx/v5/pgxpool"
)

// session holds everything a command needs to work with managed views.
type session struct {
	op   db.Operator
	meta *iometa.Store
	sync views.Synchronizer
}

// newSession connects to the database, brings the metadata table to the
// current layout and creates a synchronizer.
func newSession(ctx context.Context, opts ...ioviews.Option) (*session, error) {
	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return nil, err
	}

	slog.Info("Connected to database",
		"user", cfg.Database.User,
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Database,
		"schema", cfg.Database.Schema,
	)

	meta, err := iometa.Open(ctx, op.Pool(), cfg.Database.Schema)
	if err != nil {
		op.Close()
		return nil, err
	}

	cat := iocatalog.New(cfg.Database.Schema, meta.Table())
	iso := ioisolate.New(ioisolate.NewPool(op.Pool()))

	res := &session{
		op:   op,
		meta: meta,
		sync: ioviews.New(iso, cat, meta, opts...),
	}
	return res, nil
}

func (s *session) pool() *pgxpool.Pool {
	return s.op.Pool()
}

func (s *session) close() {
	s.op.Close()
}
