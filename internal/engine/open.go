package engine

import (
	"context"
	"errors"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/multicam/internal/source"
)

// ErrNoSources means no configured camera could be opened
var ErrNoSources = errors.New("no camera could be opened")

// OpenSources opens camera indices [0, count) with at most parallel opens in
// flight. Cameras that fail are logged and left out; the rest keep their
// index order.
func OpenSources(ctx context.Context, opener source.Opener, count, parallel int) ([]source.Source, error) {
	if parallel < 1 {
		parallel = 1
	}

	opened := make([]source.Source, count)
	var g errgroup.Group
	g.SetLimit(parallel)

	for i := 0; i < count; i++ {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			src, err := opener.Open(i)
			if err != nil {
				log.Printf("[!] Camera %d excluded: %v", i, err)
				return nil
			}
			opened[i] = src
			return nil
		})
	}
	g.Wait()

	var active []source.Source
	for _, src := range opened {
		if src != nil {
			active = append(active, src)
		}
	}

	if err := ctx.Err(); err != nil {
		closeAll(active)
		return nil, err
	}
	if len(active) == 0 {
		return nil, ErrNoSources
	}
	return active, nil
}

func closeAll(sources []source.Source) {
	for _, src := range sources {
		if err := src.Close(); err != nil {
			log.Printf("[!] Closing %s: %v", src.Name(), err)
		}
	}
}
