package hilt_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/danpasecinic/hilt"
)

type benchService struct {
	id   int
	prev *benchService
}

func (s *benchService) Start(ctx context.Context) error { return nil }

func (s *benchService) Stop(ctx context.Context) error { return nil }

// benchChain registers n services where service i depends on service i-1.
func benchChain(b *testing.B, n int) *hilt.Container {
	b.Helper()

	c := hilt.New()
	for i := range n {
		err := hilt.ProvideNamed(
			c, fmt.Sprint(i), func(ctx context.Context, r hilt.Resolver) (*benchService, error) {
				svc := &benchService{id: i}
				if i > 0 {
					prev, err := hilt.InvokeNamedCtx[*benchService](ctx, c, fmt.Sprint(i-1))
					if err != nil {
						return nil, err
					}
					svc.prev = prev
				}
				return svc, nil
			},
		)
		if err != nil {
			b.Fatal(err)
		}
	}
	return c
}

func benchmarkLifecycle(b *testing.B, n int) {
	ctx := context.Background()
	last := fmt.Sprint(n - 1)

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		c := benchChain(b, n)
		b.StartTimer()

		_ = hilt.MustInvokeNamed[*benchService](c, last)
		if err := c.Start(ctx); err != nil {
			b.Fatal(err)
		}
		if err := c.Stop(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLifecycle_10Services(b *testing.B) {
	benchmarkLifecycle(b, 10)
}

func BenchmarkLifecycle_100Services(b *testing.B) {
	benchmarkLifecycle(b, 100)
}

func BenchmarkInvoke_Cached(b *testing.B) {
	c := benchChain(b, 10)
	_ = hilt.MustInvokeNamed[*benchService](c, "9")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = hilt.MustInvokeNamed[*benchService](c, "9")
	}
}

func BenchmarkInvoke_CachedParallel(b *testing.B) {
	c := benchChain(b, 10)
	_ = hilt.MustInvokeNamed[*benchService](c, "9")

	b.ResetTimer()
	b.RunParallel(
		func(pb *testing.PB) {
			for pb.Next() {
				_ = hilt.MustInvokeNamed[*benchService](c, "9")
			}
		},
	)
}
