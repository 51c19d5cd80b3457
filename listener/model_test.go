/*
 *  MIT License
 *
 *  Copyright (c) 2025 Nicolas JUHEL
 *
 *  Permission is hereby granted, free of charge, to any person obtaining a copy
 *  of this software and associated documentation files (the "Software"), to deal
 *  in the Software without restriction, including without limitation the rights
 *  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *  copies of the Software, and to permit persons to whom the Software is
 *  furnished to do so, subject to the following conditions:
 *
 *  The above copyright notice and this permission notice shall be included in all
 *  copies or substantial portions of the Software.
 *
 *  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *  SOFTWARE.
 *
 */

package listener_test

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/sockd/listener"
	"github.com/nabbar/sockd/session"
)

func tmpSocketPath() string {
	dir, err := os.MkdirTemp("", "sockd-listener-test")
	Expect(err).ToNot(HaveOccurred())
	DeferCleanup(func() { _ = os.RemoveAll(dir) })
	return filepath.Join(dir, "test.sock")
}

var _ = Describe("Listener", func() {
	It("rejects a missing ReadSend callback", func() {
		_, err := listener.New(tmpSocketPath(), session.Callbacks{}, nil, false, nil)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a path longer than the unix socket address limit", func() {
		long := strings.Repeat("a", 200)
		_, err := listener.New(filepath.Join(os.TempDir(), long), session.Callbacks{
			ReadSend: func(session.Session, []byte, interface{}) session.PendingRead { return nil },
		}, nil, false, nil)
		Expect(err).To(HaveOccurred())
	})

	It("binds, accepts a connection, spawns a session and unlinks the path on Close", func() {
		path := tmpSocketPath()

		var accepted int32

		l, err := listener.New(path, session.Callbacks{
			OnConnect: func(session.Session, interface{}) bool {
				atomic.AddInt32(&accepted, 1)
				return true
			},
			ReadSend: func(session.Session, []byte, interface{}) session.PendingRead {
				return pendingOK{}
			},
		}, nil, true, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(l.Path()).To(Equal(path))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		Expect(l.Start(ctx)).ToNot(HaveOccurred())

		conn, err := net.Dial("unix", path)
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = conn.Close() }()

		Eventually(func() int32 { return atomic.LoadInt32(&accepted) }, time.Second).Should(Equal(int32(1)))
		Eventually(func() int { return l.SessionCount() }, time.Second).Should(Equal(1))

		Expect(l.Close()).ToNot(HaveOccurred())

		_, statErr := os.Stat(path)
		Expect(os.IsNotExist(statErr)).To(BeTrue())
	})

	It("is idempotent on repeated Close and reports already-started on repeated Start", func() {
		path := tmpSocketPath()

		l, err := listener.New(path, session.Callbacks{
			ReadSend: func(session.Session, []byte, interface{}) session.PendingRead { return pendingOK{} },
		}, nil, false, nil)
		Expect(err).ToNot(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		Expect(l.Start(ctx)).ToNot(HaveOccurred())
		Expect(l.Start(ctx)).To(HaveOccurred())

		Expect(l.Close()).ToNot(HaveOccurred())
		Expect(l.Close()).To(HaveOccurred())
	})

	It("finishes cleanly with a nil Err after Close", func() {
		path := tmpSocketPath()

		l, err := listener.New(path, session.Callbacks{
			ReadSend: func(session.Session, []byte, interface{}) session.PendingRead { return pendingOK{} },
		}, nil, false, nil)
		Expect(err).ToNot(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		Expect(l.Start(ctx)).ToNot(HaveOccurred())
		Expect(l.Close()).ToNot(HaveOccurred())

		Eventually(l.Done(), time.Second).Should(BeClosed())
		Expect(l.Err()).ToNot(HaveOccurred())
	})
})

type pendingOK struct{}

func (pendingOK) Wait() error { return nil }
