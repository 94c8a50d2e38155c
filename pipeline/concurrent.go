package pipeline

import (
	"context"
	"sync"
)

// Parallel applies fn to each value with up to n workers. Output order is
// not preserved. The first error cancels the remaining work and is the
// error the consumer sees.
func Parallel[I, O any](p *Pipeline[I], n int, fn func(context.Context, I) (O, error)) *Pipeline[O] {
	if n <= 1 {
		return Map(p, fn)
	}
	return &Pipeline[O]{
		create: func(ctx context.Context) Iterator[O] {
			workCtx, cancel := context.WithCancel(ctx)
			source := p.create(workCtx)
			in := make(chan I)
			out := make(chan result[O], n)

			send := func(r result[O]) bool {
				select {
				case out <- r:
					return true
				case <-workCtx.Done():
					return false
				}
			}

			go func() {
				defer close(in)
				for {
					val, ok, err := source.Next(workCtx)
					if err != nil {
						send(result[O]{err: err})
						return
					}
					if !ok {
						return
					}
					select {
					case in <- val:
					case <-workCtx.Done():
						return
					}
				}
			}()

			var wg sync.WaitGroup
			for range n {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for val := range in {
						o, err := fn(workCtx, val)
						if err != nil {
							send(result[O]{err: err})
							cancel()
							return
						}
						if !send(result[O]{val: o}) {
							return
						}
					}
				}()
			}
			go func() {
				wg.Wait()
				close(out)
			}()

			return &channelIter[O]{
				ch: out,
				closer: func() error {
					cancel()
					return source.Close()
				},
			}
		},
	}
}
