package pool

import "sync"

// gate is the single exclusion primitive serializing all state-mutating
// and state-reading operations on the pool, named for the role it plays
// in the concurrency envelope rather than its mechanism. The mutex is not
// optional; the pool always runs with it enabled: unlike a Vulkan allocator that may
// be told its caller already holds an external lock, a buddy pool backing
// arbitrary concurrent callers has no such external guarantee to rely on.
type gate struct {
	mu sync.Mutex
}

func (g *gate) Lock()   { g.mu.Lock() }
func (g *gate) Unlock() { g.mu.Unlock() }
