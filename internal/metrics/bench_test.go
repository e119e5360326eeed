package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// echoPrefixLen is len("Server received: "); a reply is the message
// plus this prefix.
const echoPrefixLen = 17

// BenchmarkMessagePath records what one echoed message costs the
// session: a receive and a reply, at the sizes a 1024-byte read buffer
// produces.
func BenchmarkMessagePath(b *testing.B) {
	for _, n := range []int{5, 128, 1024} {
		b.Run(fmt.Sprintf("%dB", n), func(b *testing.B) {
			c := New()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				c.MessageReceived(n)
				c.EchoSent(echoPrefixLen + n)
			}
		})
	}
}

// BenchmarkSessionLifecycle is one short session: open, two echoes,
// a farewell, close.
func BenchmarkSessionLifecycle(b *testing.B) {
	c := New()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		c.SessionOpened()
		c.MessageReceived(5)
		c.EchoSent(22)
		c.MessageReceived(5)
		c.EchoSent(22)
		c.MessageReceived(4)
		c.FarewellSent(8)
		c.SessionClosed()
	}
}

// BenchmarkScrape gathers the registered series while the counters hold
// realistic values.
func BenchmarkScrape(b *testing.B) {
	c := New()
	reg := prometheus.NewRegistry()
	if err := c.Register(reg); err != nil {
		b.Fatal(err)
	}
	c.SessionOpened()
	c.MessageReceived(1024)
	c.DecodeError()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := reg.Gather(); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkMessagePath_Disabled is the same path with metrics off.
func BenchmarkMessagePath_Disabled(b *testing.B) {
	var c *Collector
	for i := 0; i < b.N; i++ {
		c.MessageReceived(1024)
		c.EchoSent(echoPrefixLen + 1024)
	}
}
