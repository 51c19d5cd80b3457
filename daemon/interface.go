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

package daemon

import (
	"context"
	"time"

	"github.com/nabbar/sockd/listener"
	"github.com/nabbar/sockd/logger"
	"github.com/nabbar/sockd/pidlock"
	"github.com/nabbar/sockd/session"
)

// State is the controller's lifecycle position.
type State uint32

const (
	StateStarting State = iota
	StateRunning
	StateShuttingDown
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting-down"
	case StateTerminal:
		return "terminal"
	}
	return "unknown"
}

// Callbacks are the application's lifecycle hooks. All are optional.
type Callbacks struct {
	Startup     func(priv interface{})
	Reconfigure func(priv interface{})
	Shutdown    func(priv interface{})
}

// Controller owns a set of Socket Listeners and drives the daemon's
// startup, reconfigure, and shutdown lifecycle.
type Controller interface {
	// AddUnix constructs a Socket Listener for path and registers it.
	// The listener is not started until Run is called.
	AddUnix(path string, cb session.Callbacks, priv interface{}) error

	// Run starts every registered listener, installs signal handlers,
	// and optionally polls pidWatch for liveness (values <= 1 disable
	// the poller). It blocks until a shutdown trigger fires and returns
	// the terminal error, if any.
	Run(ctx context.Context, pidWatch int) error

	// State returns the controller's current lifecycle state.
	State() State

	// SessionCounts returns a snapshot of live session counts keyed by
	// listener path, for callers that poll it into their own metrics.
	SessionCounts() map[string]int

	// ListenerStats returns a snapshot of each listener's accept/reject/
	// soft-accept-error counters, keyed by path, for callers that poll
	// it into their own metrics.
	ListenerStats() map[string]listener.Stats
}

// New builds a Controller. If lock is non-nil, its exclusive PID-file
// lock is acquired immediately; failure is reported as an
// already-running condition and no Controller is returned. Listeners
// added after a non-nil lock is supplied unlink their socket path
// before binding, since the daemon owns that path exclusively.
//
// shutdownGrace optionally bounds how long shutdown's own teardown step
// (closing every listener) is allowed to run before shutdown gives up
// waiting on it and proceeds to the application Shutdown callback and
// pidlock release regardless; omitted or <= 0 waits unconditionally.
func New(name string, log logger.FuncLog, lock pidlock.Lock, cb Callbacks, priv interface{}, shutdownGrace ...time.Duration) (Controller, error) {
	return newController(name, log, lock, cb, priv, shutdownGrace...)
}
