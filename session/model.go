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
	"sync/atomic"

	"github.com/nabbar/sockd/logger"
	"github.com/nabbar/sockd/transport"
)

type sess struct {
	handle uint64
	conn   net.Conn
	tr     transport.Transport
	cb     Callbacks
	priv   interface{}
	deReg  func()
	log    logger.FuncLog

	closed atomic.Bool
	latch  atomic.Value // error
}

func newSession(handle uint64, conn net.Conn, cb Callbacks, priv interface{}, deregister func(), log logger.FuncLog) (Session, error) {
	if conn == nil || cb.ReadSend == nil {
		return nil, ErrorParamsEmpty.Error(nil)
	}

	s := &sess{
		handle: handle,
		conn:   conn,
		cb:     cb,
		priv:   priv,
		deReg:  deregister,
		log:    log,
	}

	tr, e := transport.New(conn, s.onMessage, s.onDead)
	if e != nil {
		_ = conn.Close()
		return nil, e
	}
	s.tr = tr

	if cb.OnConnect != nil && !cb.OnConnect(s, priv) {
		_ = s.tr.Close()
		return nil, nil
	}

	return s, nil
}

func (s *sess) Handle() uint64 {
	return s.handle
}

func (s *sess) logger() logger.Logger {
	if s.log == nil {
		return nil
	}
	return s.log()
}

func (s *sess) onMessage(buf []byte) {
	op := s.cb.ReadSend(s, buf, s.priv)
	if op == nil {
		return
	}

	if e := op.Wait(); e != nil {
		if l := s.logger(); l != nil {
			l.Warning("read handler reported failure, destroying session", e)
		}
		s.latchError(ErrorReadFailure.Error(e))
		_ = s.Close()
	}
}

func (s *sess) onDead() {
	if e := s.tr.Err(); e != nil {
		s.latchError(e)
		if l := s.logger(); l != nil {
			l.Warning("transport failed, destroying session", e)
		}
	}
	if s.cb.OnDisconnect != nil {
		s.cb.OnDisconnect(s, s.priv)
	}
	_ = s.Close()
}

func (s *sess) latchError(e error) {
	s.latch.CompareAndSwap(nil, e)
}

func (s *sess) WriteSend(buf []byte) (transport.WriteOp, error) {
	if s.closed.Load() {
		return nil, ErrorClosed.Error(nil)
	}

	op, e := s.tr.WriteSend(buf)
	if e != nil {
		s.latchError(e)
		return nil, ErrorWriteFailure.Error(e)
	}

	return op, nil
}

func (s *sess) WriteRecv(op transport.WriteOp) error {
	var werr error
	if op != nil {
		werr = op.Recv()
	}

	if v := s.latch.Load(); v != nil {
		if le, ok := v.(error); ok && le != nil {
			if werr == nil {
				werr = le
			}
		}
	}

	if werr != nil {
		return ErrorWriteFailure.Error(werr)
	}

	return nil
}

func (s *sess) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrorClosed.Error(nil)
	}

	if s.deReg != nil {
		s.deReg()
	}

	if s.tr != nil {
		_ = s.tr.Close()
	}

	return nil
}
