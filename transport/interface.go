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

package transport

import "net"

// OnMessage is invoked once per complete inbound message. The slice is only
// valid for the duration of the call; implementations that need to retain it
// must copy it.
type OnMessage func(buf []byte)

// OnDead is invoked at most once, when the peer closes the connection or an
// unrecoverable transport error occurs.
type OnDead func()

// WriteOp is the pending result of an asynchronous WriteSend. Recv blocks
// until the write completes and reports its outcome.
type WriteOp interface {
	Recv() error
}

// Transport delivers complete inbound messages to a supplied callback and
// offers an outbound write primitive. It imposes no request/response
// pairing; that is the consumer's concern.
type Transport interface {
	// WriteSend queues buf for asynchronous delivery and returns a WriteOp
	// whose Recv reports the outcome once the write completes.
	WriteSend(buf []byte) (WriteOp, error)

	// Close tears down the transport. Idempotent: calling Close more than
	// once returns ErrorConnClosed.Error(nil) on the second and subsequent
	// calls, without side effects.
	Close() error

	// Err returns the error that triggered OnDead, if the transport was
	// torn down by a protocol or I/O failure rather than a clean peer
	// close or explicit Close.
	Err() error
}

// MaxFrameSize bounds a single inbound message for the reference
// length-prefixed implementation. A frame announcing a larger length is a
// protocol violation and terminates the transport via OnDead.
const MaxFrameSize = 32 << 20 // 32 MiB

// New wraps conn in the reference length-prefixed framing: each message is
// a 4-byte big-endian length prefix followed by that many payload bytes.
// Reading begins immediately in a background goroutine. onMessage and
// onDead are both required; conn must be non-nil.
func New(conn net.Conn, onMessage OnMessage, onDead OnDead) (Transport, error) {
	return newLengthPrefixed(conn, onMessage, onDead)
}
