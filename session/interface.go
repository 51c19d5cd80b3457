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

package session

import (
	"net"

	"github.com/nabbar/sockd/logger"
	"github.com/nabbar/sockd/transport"
)

// PendingRead is returned by ReadSendFunc. Wait blocks until the
// application has finished processing the message and reports the
// outcome; the session will not invoke ReadSendFunc again until Wait
// returns.
type PendingRead interface {
	Wait() error
}

// OnConnectFunc is invoked synchronously right after the transport is
// established. Returning false rejects the connection: the session is
// torn down immediately and the caller of New receives (nil, nil).
type OnConnectFunc func(s Session, priv interface{}) bool

// OnDisconnectFunc is invoked once, before teardown, when the peer closes
// the connection or the transport reports an unrecoverable error.
type OnDisconnectFunc func(s Session, priv interface{})

// ReadSendFunc delivers one complete inbound message to the application.
// ReadSend is mandatory: a Callbacks with a nil ReadSend is rejected by
// New with ErrorParamsEmpty.
type ReadSendFunc func(s Session, buf []byte, priv interface{}) PendingRead

// Callbacks bundles the application hooks a listener supplies for every
// session it creates.
type Callbacks struct {
	OnConnect    OnConnectFunc
	OnDisconnect OnDisconnectFunc
	ReadSend     ReadSendFunc
}

// Session represents one accepted connection and its per-connection state.
type Session interface {
	// Handle returns the monotonic identifier this session was created
	// with; it is the key under which the owning listener registered it.
	Handle() uint64

	// WriteSend queues buf for asynchronous delivery over the session's
	// transport.
	WriteSend(buf []byte) (transport.WriteOp, error)

	// WriteRecv waits for op to complete and reports success only if the
	// underlying write succeeded and no asynchronous transport error has
	// been latched on this session since.
	WriteRecv(op transport.WriteOp) error

	// Close tears the session down: detaches from the registry (via the
	// deregister callback given to New), closes the transport, and closes
	// the underlying connection. Idempotent.
	Close() error
}

// New constructs a transport over conn and, if cb.OnConnect is set, invokes
// it synchronously. A false return rejects the connection: conn is closed
// and New returns (nil, nil) — a rejection is not an error per the
// framework's contract. deregister is invoked exactly once, when the
// session is destroyed for any reason other than rejection; it is the
// owning listener's hook to remove the session from its registry.
func New(handle uint64, conn net.Conn, cb Callbacks, priv interface{}, deregister func(), log logger.FuncLog) (Session, error) {
	return newSession(handle, conn, cb, priv, deregister, log)
}
