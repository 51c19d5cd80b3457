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

package transport_test

import (
	"encoding/binary"
	"net"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/sockd/transport"
)

var _ = Describe("lengthPrefixed transport", func() {
	var (
		client, server net.Conn
	)

	BeforeEach(func() {
		client, server = net.Pipe()
	})

	AfterEach(func() {
		_ = client.Close()
		_ = server.Close()
	})

	Context("New", func() {
		It("rejects a nil connection", func() {
			_, err := transport.New(nil, func([]byte) {}, func() {})
			Expect(err).To(HaveOccurred())
		})

		It("rejects nil callbacks", func() {
			_, err := transport.New(server, nil, func() {})
			Expect(err).To(HaveOccurred())

			_, err = transport.New(server, func([]byte) {}, nil)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("message delivery", func() {
		It("delivers one complete message per frame", func() {
			var (
				mu  sync.Mutex
				got [][]byte
			)

			tr, err := transport.New(server, func(b []byte) {
				mu.Lock()
				defer mu.Unlock()
				cp := append([]byte(nil), b...)
				got = append(got, cp)
			}, func() {})
			Expect(err).ToNot(HaveOccurred())
			defer tr.Close()

			go func() {
				_, _ = client.Write([]byte{0, 0, 0, 5})
				_, _ = client.Write([]byte("hello"))
			}()

			Eventually(func() [][]byte {
				mu.Lock()
				defer mu.Unlock()
				return got
			}, time.Second).Should(HaveLen(1))

			mu.Lock()
			Expect(string(got[0])).To(Equal("hello"))
			mu.Unlock()
		})

		It("fires onDead exactly once when the peer closes", func() {
			var (
				mu    sync.Mutex
				fired int
			)

			tr, err := transport.New(server, func([]byte) {}, func() {
				mu.Lock()
				defer mu.Unlock()
				fired++
			})
			Expect(err).ToNot(HaveOccurred())
			defer tr.Close()

			_ = client.Close()

			Eventually(func() int {
				mu.Lock()
				defer mu.Unlock()
				return fired
			}, time.Second).Should(Equal(1))

			Consistently(func() int {
				mu.Lock()
				defer mu.Unlock()
				return fired
			}, 200*time.Millisecond).Should(Equal(1))
		})

		It("tears down and records ErrorFrameTooLarge on an oversized frame", func() {
			tr, err := transport.New(server, func([]byte) {}, func() {})
			Expect(err).ToNot(HaveOccurred())
			defer tr.Close()

			hdr := make([]byte, 4)
			binary.BigEndian.PutUint32(hdr, transport.MaxFrameSize+1)
			go func() {
				_, _ = client.Write(hdr)
			}()

			Eventually(func() error { return tr.Err() }, time.Second).Should(HaveOccurred())
		})
	})

	Context("WriteSend/Recv", func() {
		It("reports success on a completed write", func() {
			tr, err := transport.New(server, func([]byte) {}, func() {})
			Expect(err).ToNot(HaveOccurred())
			defer tr.Close()

			done := make(chan struct{})
			go func() {
				defer close(done)
				hdr := make([]byte, 4)
				_, _ = client.Read(hdr)
				_, _ = client.Read(make([]byte, 3))
			}()

			op, err := tr.WriteSend([]byte("abc"))
			Expect(err).ToNot(HaveOccurred())
			Expect(op.Recv()).ToNot(HaveOccurred())
			<-done
		})

		It("rejects writes after Close", func() {
			tr, err := transport.New(server, func([]byte) {}, func() {})
			Expect(err).ToNot(HaveOccurred())
			Expect(tr.Close()).ToNot(HaveOccurred())

			_, err = tr.WriteSend([]byte("x"))
			Expect(err).To(HaveOccurred())
		})

		It("Close is idempotent and reports on the second call", func() {
			tr, err := transport.New(server, func([]byte) {}, func() {})
			Expect(err).ToNot(HaveOccurred())

			Expect(tr.Close()).ToNot(HaveOccurred())
			Expect(tr.Close()).To(HaveOccurred())
		})
	})
})
