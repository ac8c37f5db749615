package cloudantclient

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/xid"
)

// requestIDSource issues correlation identifiers of the form <tag><counter>.
// The tag is random per client instance so that ids from two clients in the
// same process never collide; the counter increases monotonically. Ids are
// attached to log lines and the X-Request-Id header, never consulted for
// routing.
type requestIDSource struct {
	tag     string
	counter atomic.Uint64
}

func newRequestIDSource() *requestIDSource {
	return &requestIDSource{tag: xid.New().String()}
}

func (s *requestIDSource) next() string {
	return fmt.Sprintf("%s%d", s.tag, s.counter.Add(1))
}
