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

package metrics

import "github.com/prometheus/client_golang/prometheus"

type collector struct {
	sessions     *prometheus.GaugeVec
	accepted     *prometheus.CounterVec
	rejected     *prometheus.CounterVec
	acceptErrors *prometheus.CounterVec
}

func newCollector(namespace string) Collector {
	return &collector{
		sessions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "listener",
			Name:      "sessions",
			Help:      "Current number of live client sessions per listener.",
		}, []string{"path"}),
		accepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listener",
			Name:      "accepted_total",
			Help:      "Total number of accepted connections per listener.",
		}, []string{"path"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listener",
			Name:      "rejected_total",
			Help:      "Total number of connections rejected by on_connect per listener.",
		}, []string{"path"}),
		acceptErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listener",
			Name:      "accept_errors_total",
			Help:      "Total number of soft (retried) accept errors per listener.",
		}, []string{"path"}),
	}
}

func (c *collector) Register(reg prometheus.Registerer) error {
	for _, col := range []prometheus.Collector{c.sessions, c.accepted, c.rejected, c.acceptErrors} {
		if e := reg.Register(col); e != nil {
			return e
		}
	}
	return nil
}

func (c *collector) SetSessions(path string, n int) {
	c.sessions.WithLabelValues(path).Set(float64(n))
}

func (c *collector) IncAccepted(path string) {
	c.accepted.WithLabelValues(path).Inc()
}

func (c *collector) IncRejected(path string) {
	c.rejected.WithLabelValues(path).Inc()
}

func (c *collector) IncAcceptError(path string) {
	c.acceptErrors.WithLabelValues(path).Inc()
}
