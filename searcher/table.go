package searcher

import (
	"boards/game"
	"bytes"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

const tableShards = 64

// Stats are the aggregated visits and score of one position.
type Stats struct {
	Visits int64
	Score  int64
}

// Record is one table entry as written to disk.
type Record struct {
	Key   game.Fingerprint
	Board []byte // game.Board.Encode output, used to detect collisions
	Stats
}

type tableEntry struct {
	board []byte
	Stats
}

type tableShard struct {
	sync.RWMutex
	entries map[game.Fingerprint]*tableEntry
}

// Table maps board fingerprints to statistics shared by every tree branch
// that reaches the same position. Entries only ever accumulate. Scores are
// kept from PlayerA's side when the search scores for the searching player. Each entry
// keeps the encoded board it was created for; an update from a different
// board with the same fingerprint is counted as a collision and dropped.
type Table struct {
	shards     [tableShards]tableShard
	hash       func(*game.Board) game.Fingerprint
	collisions atomic.Int64
}

type TableOption func(t *Table)

// WithHasher replaces the Zobrist fingerprint.
func WithHasher(hash func(*game.Board) game.Fingerprint) TableOption {
	return func(t *Table) {
		if hash != nil {
			t.hash = hash
		}
	}
}

func NewTable(options ...TableOption) *Table {
	t := &Table{
		hash: func(b *game.Board) game.Fingerprint { return b.Fingerprint() },
	}
	for i := range t.shards {
		t.shards[i].entries = make(map[game.Fingerprint]*tableEntry)
	}
	for _, option := range options {
		option(t)
	}
	return t
}

func (t *Table) shard(key game.Fingerprint) *tableShard {
	return &t.shards[uint64(key)%tableShards]
}

// Get returns the statistics stored for b. A slot owned by a different board
// reads as a miss.
func (t *Table) Get(b *game.Board) (Stats, bool) {
	key := t.hash(b)
	s := t.shard(key)

	s.RLock()
	defer s.RUnlock()

	e, ok := s.entries[key]
	if !ok || !bytes.Equal(e.board, b.Encode()) {
		return Stats{}, false
	}
	return e.Stats, true
}

// Put adds the deltas to the entry for b, creating it at zero if absent.
func (t *Table) Put(b *game.Board, visits, score int64) {
	key := t.hash(b)
	encoded := b.Encode()
	s := t.shard(key)

	s.Lock()
	defer s.Unlock()

	e, ok := s.entries[key]
	if !ok {
		s.entries[key] = &tableEntry{board: encoded, Stats: Stats{Visits: visits, Score: score}}
		return
	}
	if !bytes.Equal(e.board, encoded) {
		n := t.collisions.Add(1)
		log.Debug().Uint64("key", uint64(key)).Int64("collisions", n).Msg("transposition table collision")
		return
	}
	e.Visits += visits
	e.Score += score
}

// Collisions counts updates dropped because another board owned the slot.
func (t *Table) Collisions() int64 {
	return t.collisions.Load()
}

func (t *Table) Len() int {
	n := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.RLock()
		n += len(s.entries)
		s.RUnlock()
	}
	return n
}

// Clear drops every entry and resets the collision counter.
func (t *Table) Clear() {
	for i := range t.shards {
		s := &t.shards[i]
		s.Lock()
		s.entries = make(map[game.Fingerprint]*tableEntry)
		s.Unlock()
	}
	t.collisions.Store(0)
}

// Records returns a copy of every entry ordered by key.
func (t *Table) Records() []Record {
	records := make([]Record, 0, t.Len())
	for i := range t.shards {
		s := &t.shards[i]
		s.RLock()
		for key, e := range s.entries {
			board := make([]byte, len(e.board))
			copy(board, e.board)
			records = append(records, Record{Key: key, Board: board, Stats: e.Stats})
		}
		s.RUnlock()
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Key < records[j].Key })
	return records
}

// merge accumulates records into the table under the same collision rule as Put.
func (t *Table) merge(records []Record) {
	for _, r := range records {
		s := t.shard(r.Key)
		s.Lock()
		e, ok := s.entries[r.Key]
		switch {
		case !ok:
			s.entries[r.Key] = &tableEntry{board: r.Board, Stats: r.Stats}
		case bytes.Equal(e.board, r.Board):
			e.Visits += r.Visits
			e.Score += r.Score
		default:
			t.collisions.Add(1)
		}
		s.Unlock()
	}
}

// absorb merges every entry of other into t along with its collision count.
func (t *Table) absorb(other *Table) {
	t.merge(other.Records())
	t.collisions.Add(other.Collisions())
}

// tableView is one worker's window on a table during a search. Reads see the
// base table, which no worker writes to while searching, plus the worker's
// own updates. Scores are multiplied by sign on the way in and out.
type tableView struct {
	base  *Table
	delta *Table
	sign  int64
}

func newTableView(base *Table, sign int64) *tableView {
	return &tableView{base: base, delta: NewTable(WithHasher(base.hash)), sign: sign}
}

func (v *tableView) get(b *game.Board) (Stats, bool) {
	s, ok := v.base.Get(b)
	d, dok := v.delta.Get(b)
	if !ok && !dok {
		return Stats{}, false
	}
	return Stats{Visits: s.Visits + d.Visits, Score: v.sign * (s.Score + d.Score)}, true
}

func (v *tableView) put(b *game.Board, visits, score int64) {
	v.delta.Put(b, visits, v.sign*score)
}
