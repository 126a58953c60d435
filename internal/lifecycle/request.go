package lifecycle

import (
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/api"
)

// Status is the phase of a slice operation. The zero value is idle.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

var statusNames = [...]string{"idle", "loading", "succeeded", "failed"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Request is the status triplet of one slice operation: whether it is
// loading, how it last settled, and the error it left behind.
type Request struct {
	Status Status     `json:"status"`
	Error  *api.Error `json:"error,omitempty"`
}

func (r Request) Loading() bool { return r.Status == StatusLoading }

// Failed reports whether the last settled call was rejected.
func (r Request) Failed() bool { return r.Status == StatusFailed }

// ClearError drops the stored error. A failed request returns to idle.
func (r *Request) ClearError() {
	r.Error = nil
	if r.Status == StatusFailed {
		r.Status = StatusIdle
	}
}

func (r *Request) pending() {
	r.Status = StatusLoading
	r.Error = nil
}

func (r *Request) fulfill() {
	r.Status = StatusSucceeded
	r.Error = nil
}

func (r *Request) reject(err *api.Error) {
	r.Status = StatusFailed
	r.Error = err
}

func (r *Request) abort() {
	r.Status = StatusIdle
	r.Error = nil
}
