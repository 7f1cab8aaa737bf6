package ioisolate

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnviews/pkg/errcode"
)

// CheckoutError is returned when no connection can be taken from the
// pool.
func CheckoutError(err error) error {
	msg := `Cannot get a database connection for view bookkeeping

<em>How to fix:</em>
  Increase <em>database.max_connections</em> in the configuration.`
	return &gn.Error{
		Code: errcode.DBCheckoutError,
		Msg:  msg,
		Err:  fmt.Errorf("connection checkout failed: %w", err),
	}
}
