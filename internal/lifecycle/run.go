package lifecycle

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/api"
)

// ErrSuperseded is returned when the slice was reset while the call was in
// flight. The result was dropped and state is untouched.
var ErrSuperseded = errors.New("result discarded: slice was reset while the request was in flight")

// Op describes one network-backed slice operation.
type Op[S any, T any] struct {
	Name string
	// Request selects the status triplet the operation drives.
	Request func(*S) *Request
	Call    func(ctx context.Context) (T, error)
	// Apply merges a successful result into state. It runs in the same
	// atomic step that marks the request succeeded.
	Apply func(*S, T)
}

// Run drives op through pending and then fulfilled or rejected.
//
// A rejection stores the normalized error and leaves domain fields alone.
// If ctx is canceled the result is ignored and the request goes back to idle.
// A context canceled with a non-cancel cause (for example a deadline handed
// down by a shared call) is a failure carrying that cause.
// If the slice was reset meanwhile nothing is applied and ErrSuperseded is
// returned. Concurrent runs of the same op are not serialized; whichever
// settles last wins.
func Run[S Cloner[S], T any](ctx context.Context, s *Slice[S], op Op[S, T]) (T, error) {
	var zero T
	log := s.logger.With(zap.String("op", op.Name))

	epoch := s.begin(func(st *S) { op.Request(st).pending() })
	log.Debug("lifecycle", zap.String("phase", "pending"), zap.Uint64("epoch", epoch))

	res, err := op.Call(ctx)

	if ctx.Err() != nil {
		cause := context.Cause(ctx)
		if errors.Is(cause, context.Canceled) {
			s.updateAt(epoch, func(st *S) { op.Request(st).abort() })
			log.Debug("lifecycle", zap.String("phase", "aborted"), zap.Uint64("epoch", epoch))
			return zero, cause
		}
		if err != nil {
			err = cause
		}
	}

	if err != nil {
		apiErr := api.Normalize(err)
		if !s.updateAt(epoch, func(st *S) { op.Request(st).reject(apiErr) }) {
			log.Debug("lifecycle", zap.String("phase", "superseded"), zap.Uint64("epoch", epoch))
			return zero, ErrSuperseded
		}
		log.Warn("lifecycle",
			zap.String("phase", "rejected"),
			zap.String("kind", string(apiErr.Kind)),
			zap.Int("status", apiErr.StatusCode),
			zap.String("code", apiErr.Code),
			zap.String("message", apiErr.Message))
		return zero, apiErr
	}

	applied := s.updateAt(epoch, func(st *S) {
		op.Request(st).fulfill()
		if op.Apply != nil {
			op.Apply(st, res)
		}
	})
	if !applied {
		log.Debug("lifecycle", zap.String("phase", "superseded"), zap.Uint64("epoch", epoch))
		return zero, ErrSuperseded
	}
	log.Debug("lifecycle", zap.String("phase", "fulfilled"), zap.Uint64("epoch", epoch))
	return res, nil
}
