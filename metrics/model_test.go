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

package metrics_test

import (
	"github.com/prometheus/client_golang/prometheus"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/sockd/metrics"
)

func gaugeValue(reg *prometheus.Registry, name string) float64 {
	families, err := reg.Gather()
	Expect(err).ToNot(HaveOccurred())

	for _, f := range families {
		if f.GetName() == name {
			return f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	return -1
}

func counterValue(reg *prometheus.Registry, name string) float64 {
	families, err := reg.Gather()
	Expect(err).ToNot(HaveOccurred())

	for _, f := range families {
		if f.GetName() == name {
			return f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return -1
}

var _ = Describe("Collector", func() {
	It("registers and reports sessions, accepted, rejected and accept-error counters", func() {
		reg := prometheus.NewRegistry()
		c := metrics.New("sockd")

		Expect(c.Register(reg)).ToNot(HaveOccurred())

		c.SetSessions("/tmp/a.sock", 3)
		c.IncAccepted("/tmp/a.sock")
		c.IncAccepted("/tmp/a.sock")
		c.IncRejected("/tmp/a.sock")
		c.IncAcceptError("/tmp/a.sock")

		Expect(gaugeValue(reg, "sockd_listener_sessions")).To(Equal(float64(3)))
		Expect(counterValue(reg, "sockd_listener_accepted_total")).To(Equal(float64(2)))
		Expect(counterValue(reg, "sockd_listener_rejected_total")).To(Equal(float64(1)))
		Expect(counterValue(reg, "sockd_listener_accept_errors_total")).To(Equal(float64(1)))
	})

	It("fails to register twice against the same registry", func() {
		reg := prometheus.NewRegistry()
		c := metrics.New("sockd")

		Expect(c.Register(reg)).ToNot(HaveOccurred())
		Expect(c.Register(reg)).To(HaveOccurred())
	})
})
