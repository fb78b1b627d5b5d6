package collide

import (
	"cmp"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/akmonengine/collide/gjk"
)

// Pair is a candidate pair handed over by the caller's broad phase. Index identifies
// the pair in the results.
type Pair struct {
	Index int
	A     *Solid
	B     *Solid
}

// Contact is a pair found overlapping.
type Contact struct {
	Pair
	Info CollisionInfo
}

// collisionPair is a pair GJK found overlapping, with the simplex EPA starts from.
type collisionPair struct {
	Pair
	simplex *gjk.Simplex
}

// NarrowPhase tests every pair received on pairs and returns the overlapping ones,
// sorted by Index. GJK and EPA run in two stages of Config.Workers goroutines each,
// so that cheap separations never wait behind EPA expansions.
//
// The shapes must not be mutated until NarrowPhase returns.
func (d *Detector) NarrowPhase(pairs <-chan Pair) []Contact {
	d.logger.Debugf("narrow phase: %d workers per stage", d.config.Workers)

	var tested atomic.Int64
	collisionPairs := d.gjkStage(pairs, &tested)
	contactsChan := d.epaStage(collisionPairs)

	contacts := make([]Contact, 0)
	for c := range contactsChan {
		contacts = append(contacts, c)
	}
	slices.SortFunc(contacts, func(a, b Contact) int {
		return cmp.Compare(a.Index, b.Index)
	})
	d.logger.Infof("narrow phase: %d of %d pairs overlap", len(contacts), tested.Load())

	return contacts
}

func (d *Detector) gjkStage(pairChan <-chan Pair, tested *atomic.Int64) <-chan collisionPair {
	collisionChan := make(chan collisionPair, d.config.Workers)

	go func() {
		var wg sync.WaitGroup
		defer close(collisionChan)

		for w := 0; w < d.config.Workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				for p := range pairChan {
					tested.Add(1)
					simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
					simplex.Reset()

					if collision := gjk.GJK(p.A, p.B, simplex, d.config.GJK); collision {
						collisionChan <- collisionPair{
							Pair:    p,
							simplex: simplex,
						}
					} else {
						gjk.SimplexPool.Put(simplex)
					}
				}
			}()
		}
		wg.Wait()
	}()

	return collisionChan
}

func (d *Detector) epaStage(p <-chan collisionPair) <-chan Contact {
	ch := make(chan Contact, d.config.Workers)

	go func() {
		var wg sync.WaitGroup
		defer close(ch)

		for w := 0; w < d.config.Workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for pair := range p {
					info := d.penetration(pair.A, pair.B, pair.simplex)
					gjk.SimplexPool.Put(pair.simplex)
					ch <- Contact{Pair: pair.Pair, Info: info}
				}
			}()
		}

		wg.Wait()
	}()

	return ch
}

// CollideAll tests a slice of pairs, splitting it in Config.Workers chunks. Unlike
// NarrowPhase the result is indexed like pairs: ok[i] reports whether pairs[i] overlaps.
func (d *Detector) CollideAll(pairs []Pair) (infos []CollisionInfo, ok []bool) {
	infos = make([]CollisionInfo, len(pairs))
	ok = make([]bool, len(pairs))

	indices := make([]int, len(pairs))
	for i := range indices {
		indices[i] = i
	}

	task(d.config.Workers, indices, func(i int) {
		infos[i], ok[i] = d.CollideSolids(pairs[i].A, pairs[i].B)
	})

	overlapping := 0
	for _, hit := range ok {
		if hit {
			overlapping++
		}
	}
	d.logger.Infof("collide all: %d of %d pairs overlap", overlapping, len(pairs))

	return infos, ok
}
