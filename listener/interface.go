/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package listener

import (
	"context"

	"github.com/nabbar/sockd/logger"
	"github.com/nabbar/sockd/session"
)

// maxUnixSocketPathLen matches the conventional Linux sockaddr_un.sun_path
// capacity (108 bytes including the trailing NUL); a longer path is a fatal
// config error per the component's setup contract.
const maxUnixSocketPathLen = 107

// unixListenBacklog is the accept backlog passed to listen(2), matching the
// source's fixed value.
const unixListenBacklog = 10

// Stats is a point-in-time snapshot of one listener's lifecycle counters,
// for callers that poll it into their own metrics (the listener itself
// stays metrics-agnostic).
type Stats struct {
	// Accepted counts connections that completed session.New and were
	// not rejected by OnConnect.
	Accepted uint64

	// Rejected counts connections OnConnect returned false for.
	Rejected uint64

	// AcceptErrors counts soft (temporary, retried) Accept errors.
	AcceptErrors uint64
}

// Listener owns one bound+listening unix socket and every Client Session
// accepted on it.
type Listener interface {
	// Path returns the filesystem path this listener is bound to.
	Path() string

	// Start begins the accept loop in a background goroutine and returns
	// immediately. A non-nil error means the loop never started.
	Start(ctx context.Context) error

	// Done is closed when the accept loop terminates, whether from Close,
	// context cancellation, or a non-recoverable accept error.
	Done() <-chan struct{}

	// Err returns the terminal error once Done is closed: nil on a clean
	// Close/context-cancel, non-nil when the accept chain failed.
	Err() error

	// SessionCount returns the number of currently live sessions.
	SessionCount() int

	// Stats returns a snapshot of the accept/reject/soft-error counters
	// accumulated since the listener was created.
	Stats() Stats

	// Close tears the listener down: stops the accept loop, destroys every
	// live session, closes the listening fd, and unlinks the socket path.
	// Idempotent.
	Close() error
}

// New validates cb and path, then creates, binds, and listens on an
// AF_UNIX/SOCK_STREAM socket at path. If removeBeforeUse is true the path
// is unlinked before bind (the daemon owns the path exclusively, e.g. when
// a PID file is in use); otherwise a pre-existing path fails bind as an
// I/O error. The accept loop is not started until Start is called.
func New(path string, cb session.Callbacks, priv interface{}, removeBeforeUse bool, log logger.FuncLog) (Listener, error) {
	return newListener(path, cb, priv, removeBeforeUse, log)
}
