package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// AgentConfig describes one side of a matchup as it appears in the records.
type AgentConfig struct {
	ID         int
	Name       string
	Kind       string // mcts, alphabeta or random
	Goroutines int
	Duration   time.Duration
	Episodes   int
	MaxDepth   int
}

type GameRecord struct {
	ID      int
	UUID    uuid.UUID
	Agent1  int // AgentConfig.ID
	Agent2  int // AgentConfig.ID
	Columns []int
	Rows    []int
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

// GameRow is the Parquet layout of a GameRecord.
type GameRow struct {
	GameID         string  `parquet:"game_id"`
	Seq            int32   `parquet:"seq"`
	Agent1         int32   `parquet:"agent1"`
	Agent2         int32   `parquet:"agent2"`
	StartingPlayer int32   `parquet:"starting_player"`
	Winner         string  `parquet:"winner,dict"`
	Forfeit        bool    `parquet:"forfeit"`
	TotalMoves     int32   `parquet:"total_moves"`
	StartUnixMs    int64   `parquet:"start_unix_ms"`
	DurationMs     int64   `parquet:"duration_ms"`
	Columns        []int32 `parquet:"columns"`
	Rows           []int32 `parquet:"rows"`
}

type Writer struct {
	baseDir string
}

// NewWriter creates root/name/<timestamp> to hold one experiment's files.
func NewWriter(root, name string) (*Writer, error) {
	// Create a subfolder named by current timestamp
	timestamp := time.Now().UTC().Format("20060102T150405.000Z")
	baseDir := filepath.Join(root, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	header := []string{"id", "name", "kind", "goroutines", "duration", "episodes", "max_depth"}
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			config.Name,
			config.Kind,
			strconv.Itoa(config.Goroutines),
			config.Duration.String(),
			strconv.Itoa(config.Episodes),
			strconv.Itoa(config.MaxDepth),
		})
	}
	return w.writeCSV("agent_configs.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "uuid", "agent1", "agent2", "starting_player", "winner", "forfeit", "total_moves", "start_time", "end_time", "duration"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			record.UUID.String(),
			strconv.Itoa(record.Agent1),
			strconv.Itoa(record.Agent2),
			strconv.Itoa(record.StartingPlayer),
			record.Winner,
			strconv.FormatBool(record.Forfeit),
			strconv.Itoa(record.TotalMoves),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
		})
	}
	return w.writeCSV("game_records.csv", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{"game", "step", "player", "column", "row", "searcher", "goroutines", "duration", "episodes", "full_playouts", "depth", "nodes", "table_entries", "collisions", "is_tree_reset"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			strconv.Itoa(record.Player),
			strconv.Itoa(record.Column),
			strconv.Itoa(record.Row),
			record.Searcher,
			strconv.Itoa(record.Goroutines),
			record.Duration.String(),
			strconv.Itoa(record.Episodes),
			strconv.Itoa(record.FullPlayouts),
			strconv.Itoa(record.Depth),
			strconv.Itoa(record.Nodes),
			strconv.Itoa(record.TableEntries),
			strconv.Itoa(record.Collisions),
			strconv.FormatBool(record.IsTreeReset),
		})
	}
	return w.writeCSV("move_records.csv", header, rows)
}

// WriteGameParquet stores the game records as games.parquet. The file is
// written under a temporary name and renamed into place.
func (w *Writer) WriteGameParquet(records []GameRecord) (string, error) {
	rows := make([]GameRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, GameRow{
			GameID:         record.UUID.String(),
			Seq:            int32(record.ID),
			Agent1:         int32(record.Agent1),
			Agent2:         int32(record.Agent2),
			StartingPlayer: int32(record.StartingPlayer),
			Winner:         record.Winner,
			Forfeit:        record.Forfeit,
			TotalMoves:     int32(record.TotalMoves),
			StartUnixMs:    record.StartTime.UnixMilli(),
			DurationMs:     record.Duration.Milliseconds(),
			Columns:        toInt32(record.Columns),
			Rows:           toInt32(record.Rows),
		})
	}

	outPath := filepath.Join(w.baseDir, "games.parquet")
	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "game_record_v1"),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return outPath, nil
}

func (w *Writer) writeCSV(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return nil
}

func toInt32(values []int) []int32 {
	out := make([]int32, len(values))
	for i, v := range values {
		out[i] = int32(v)
	}
	return out
}
