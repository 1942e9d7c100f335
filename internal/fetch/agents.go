package fetch

import (
	"math/rand"
	"sync"
)

// agentPool rotates browser user agents across outbound fetches so a burst
// of variants does not present a single fingerprint.
type agentPool struct {
	agents []string
	mu     sync.Mutex
	rng    *rand.Rand
}

func newAgentPool(seed int64) *agentPool {
	return &agentPool{
		agents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (p *agentPool) pick() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.agents[p.rng.Intn(len(p.agents))]
}
