package game

import "sync"

type zobristKey struct {
	width, height int
}

type zobristTable struct {
	keys []uint64 // two keys per cell, one per player
}

var (
	zobristMu     sync.Mutex
	zobristTables = map[zobristKey]*zobristTable{}
)

// zobristFor returns the key table for a board size. Keys come from a fixed
// splitmix64 seed so fingerprints are stable across processes.
func zobristFor(width, height int) *zobristTable {
	key := zobristKey{width: width, height: height}

	zobristMu.Lock()
	defer zobristMu.Unlock()

	if t, ok := zobristTables[key]; ok {
		return t
	}
	rng := splitmix64{state: 0x9e3779b97f4a7c15 ^ (uint64(width)<<32 | uint64(height))}
	t := &zobristTable{keys: make([]uint64, width*height*2)}
	for i := range t.keys {
		t.keys[i] = rng.next()
	}
	zobristTables[key] = t
	return t
}

// Fingerprint hashes the full grid from scratch.
func (b *Board) Fingerprint() Fingerprint {
	t := zobristFor(b.rules.Width, b.rules.Height)
	var h uint64
	for i, p := range b.cells {
		if p == None {
			continue
		}
		h ^= t.keys[i*2+int(p)-1]
	}
	return Fingerprint(h)
}

type splitmix64 struct {
	state uint64
}

func (s *splitmix64) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
