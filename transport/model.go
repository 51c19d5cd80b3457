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

import (
	"bufio"
	"encoding/binary"
	"io"
	"net"
	"sync"
	"sync/atomic"
)

type writeOp struct {
	done chan struct{}
	err  error
}

func (w *writeOp) Recv() error {
	<-w.done
	return w.err
}

type lengthPrefixed struct {
	conn   net.Conn
	rdr    *bufio.Reader
	onMsg  OnMessage
	onDead OnDead

	wm     sync.Mutex // serializes frame writes on the wire
	closed atomic.Bool
	dead   atomic.Bool
	err    atomic.Value // error
}

func newLengthPrefixed(conn net.Conn, onMessage OnMessage, onDead OnDead) (Transport, error) {
	if conn == nil || onMessage == nil || onDead == nil {
		return nil, ErrorParamsEmpty.Error(nil)
	}

	t := &lengthPrefixed{
		conn:   conn,
		rdr:    bufio.NewReader(conn),
		onMsg:  onMessage,
		onDead: onDead,
	}

	go t.readLoop()

	return t, nil
}

func (t *lengthPrefixed) readLoop() {
	var hdr [4]byte

	for {
		if _, e := io.ReadFull(t.rdr, hdr[:]); e != nil {
			t.readFailed(e)
			return
		}

		n := binary.BigEndian.Uint32(hdr[:])
		if n > MaxFrameSize {
			t.err.Store(ErrorFrameTooLarge.Error(nil))
			t.fireDead()
			return
		}

		buf := make([]byte, n)
		if n > 0 {
			if _, e := io.ReadFull(t.rdr, buf); e != nil {
				t.readFailed(e)
				return
			}
		}

		t.onMsg(buf)
	}
}

// readFailed records e as ErrorReadFailure unless it is a clean peer close
// (io.EOF at a frame boundary) or follows an explicit Close, then fires onDead.
func (t *lengthPrefixed) readFailed(e error) {
	if e != io.EOF && !t.closed.Load() {
		t.err.Store(ErrorReadFailure.Error(e))
	}
	t.fireDead()
}

func (t *lengthPrefixed) fireDead() {
	if t.dead.CompareAndSwap(false, true) {
		t.onDead()
	}
}

func (t *lengthPrefixed) WriteSend(buf []byte) (WriteOp, error) {
	if t.closed.Load() {
		return nil, ErrorConnClosed.Error(nil)
	}

	op := &writeOp{done: make(chan struct{})}

	go func() {
		defer close(op.done)

		var hdr [4]byte
		binary.BigEndian.PutUint32(hdr[:], uint32(len(buf)))

		t.wm.Lock()
		defer t.wm.Unlock()

		if _, e := t.conn.Write(hdr[:]); e != nil {
			op.err = ErrorWriteFailure.Error(e)
			return
		}
		if len(buf) > 0 {
			if _, e := t.conn.Write(buf); e != nil {
				op.err = ErrorWriteFailure.Error(e)
			}
		}
	}()

	return op, nil
}

func (t *lengthPrefixed) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return ErrorConnClosed.Error(nil)
	}

	return t.conn.Close()
}

func (t *lengthPrefixed) Err() error {
	if v := t.err.Load(); v != nil {
		if e, ok := v.(error); ok {
			return e
		}
	}
	return nil
}
