package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Searcher     string
	Goroutines   int
	Duration     time.Duration
	Episodes     int
	FullPlayouts int // Rollouts started from a non-terminal position
	Depth        int // Deepest completed iteration (alpha-beta)
	Nodes        int // Positions visited (alpha-beta)
	TableEntries int
	Collisions   int
	IsTreeReset  bool
}

type MoveMetric struct {
	Step   int
	Player int // Player ID
	Column int
	Row    int
	SearchMetric
}

type GameMetric struct {
	StartingPlayer int    // Player ID
	Winner         string // Player mark, "." for a draw
	Forfeit        bool
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

type Collector interface {
	Start(searcher string, goroutines int)
	SetTreeReset(value bool)
	SetDepth(depth, nodes int)
	SetTable(entries, collisions int)
	AddFullPlayout()
	AddEpisode()
	Complete() SearchMetric
}

type collector struct {
	searcher     string
	goroutines   int
	startTime    time.Time
	episodes     atomic.Int32
	fullPlayouts atomic.Int32
	isTreeReset  atomic.Bool
	depth        int
	nodes        int
	entries      int
	collisions   int
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) SetTreeReset(value bool) {
	m.isTreeReset.Store(value)
}

func (m *collector) Start(searcher string, goroutines int) {
	m.startTime = time.Now()
	m.searcher = searcher
	m.goroutines = goroutines
	m.episodes.Store(0)
	m.fullPlayouts.Store(0)
	m.depth, m.nodes = 0, 0
	m.entries, m.collisions = 0, 0
}

func (m *collector) SetDepth(depth, nodes int) {
	m.depth = depth
	m.nodes = nodes
}

func (m *collector) SetTable(entries, collisions int) {
	m.entries = entries
	m.collisions = collisions
}

func (m *collector) AddFullPlayout() {
	m.fullPlayouts.Add(1)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Searcher:     m.searcher,
		Goroutines:   m.goroutines,
		Duration:     time.Since(m.startTime),
		Episodes:     int(m.episodes.Load()),
		FullPlayouts: int(m.fullPlayouts.Load()),
		Depth:        m.depth,
		Nodes:        m.nodes,
		TableEntries: m.entries,
		Collisions:   m.collisions,
		IsTreeReset:  m.isTreeReset.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(searcher string, goroutines int) {}
func (m *dummyCollector) SetTreeReset(value bool)               {}
func (m *dummyCollector) SetDepth(depth, nodes int)             {}
func (m *dummyCollector) SetTable(entries, collisions int)      {}
func (m *dummyCollector) AddFullPlayout()                       {}
func (m *dummyCollector) AddEpisode()                           {}
func (m *dummyCollector) Complete() SearchMetric                { return SearchMetric{} }
