package editing

import (
	"context"
	"errors"
	"fmt"

	"pkt.systems/pslog"

	"github.com/umair4234/Thumbgenai/internal/credentials"
)

// Rotating runs each request with the ring's current key and moves on to
// the next key when the backend reports quota or credential problems.
type Rotating struct {
	Ring *credentials.Ring
	New  func(key string) Backend
	Log  pslog.Logger
}

// Generate implements Backend.
func (r *Rotating) Generate(ctx context.Context, req *Request) (*Result, error) {
	return r.do(func(b Backend) (*Result, error) { return b.Generate(ctx, req) })
}

// Edit implements Backend.
func (r *Rotating) Edit(ctx context.Context, req *Request) (*Result, error) {
	return r.do(func(b Backend) (*Result, error) { return b.Edit(ctx, req) })
}

func (r *Rotating) do(call func(Backend) (*Result, error)) (*Result, error) {
	var last error
	for i := 0; i < r.Ring.Len(); i++ {
		key := r.Ring.Current()
		res, err := call(r.New(key))
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, ErrQuota) && !errors.Is(err, ErrUnauthorized) {
			return nil, err
		}
		if r.Log != nil {
			r.Log.Warn("backend key rejected", "key", credentials.Hint(key), "err", err)
		}
		last = err
		r.Ring.Rotate()
	}
	return nil, fmt.Errorf("all %d keys failed: %w", r.Ring.Len(), last)
}
