package searcher

import (
	"boards/game"
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// On-disk layout, big-endian:
//
//	magic "C4ZT" | version u8 | count u64
//	count x (key u64 | visits i64 | score i64 | board length u16 | board bytes)
//
// Version 2 stores searcher-relative scores from PlayerA's side. Version 1
// files carry no orientation and are refused.
const (
	tableMagic   = "C4ZT"
	tableVersion = 2
)

var ErrBadTableFormat = errors.New("bad transposition table format")

// DefaultTablePath is where a player keeps its table between games.
func DefaultTablePath(suffix string) string {
	return filepath.Join("res", "C4_Zobrist.dat"+suffix)
}

// Save writes every entry of the table to w.
func (t *Table) Save(w io.Writer) error {
	records := t.Records()
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(tableMagic); err != nil {
		return fmt.Errorf("failed to write table header: %w", err)
	}
	if err := bw.WriteByte(tableVersion); err != nil {
		return fmt.Errorf("failed to write table header: %w", err)
	}
	if err := binary.Write(bw, binary.BigEndian, uint64(len(records))); err != nil {
		return fmt.Errorf("failed to write record count: %w", err)
	}

	for _, r := range records {
		if len(r.Board) > 0xFFFF {
			return fmt.Errorf("board encoding of %d bytes is too large", len(r.Board))
		}
		fixed := []any{uint64(r.Key), r.Visits, r.Score, uint16(len(r.Board))}
		for _, v := range fixed {
			if err := binary.Write(bw, binary.BigEndian, v); err != nil {
				return fmt.Errorf("failed to write record: %w", err)
			}
		}
		if _, err := bw.Write(r.Board); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush table: %w", err)
	}
	return nil
}

// Load reads entries written by Save and accumulates them into the table.
// Nothing is merged unless the whole stream parses.
func (t *Table) Load(r io.Reader) error {
	br := bufio.NewReader(r)

	magic := make([]byte, len(tableMagic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return fmt.Errorf("%w: missing header: %v", ErrBadTableFormat, err)
	}
	if string(magic) != tableMagic {
		return fmt.Errorf("%w: unexpected magic %q", ErrBadTableFormat, magic)
	}
	version, err := br.ReadByte()
	if err != nil {
		return fmt.Errorf("%w: missing version: %v", ErrBadTableFormat, err)
	}
	if version != tableVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrBadTableFormat, version)
	}

	var count uint64
	if err := binary.Read(br, binary.BigEndian, &count); err != nil {
		return fmt.Errorf("%w: missing record count: %v", ErrBadTableFormat, err)
	}

	records := make([]Record, 0, min(count, 1<<16))
	for i := uint64(0); i < count; i++ {
		var key uint64
		var size uint16
		var rec Record
		for _, v := range []any{&key, &rec.Visits, &rec.Score, &size} {
			if err := binary.Read(br, binary.BigEndian, v); err != nil {
				return fmt.Errorf("%w: record %d: %v", ErrBadTableFormat, i, err)
			}
		}
		rec.Key = game.Fingerprint(key)
		rec.Board = make([]byte, size)
		if _, err := io.ReadFull(br, rec.Board); err != nil {
			return fmt.Errorf("%w: record %d board: %v", ErrBadTableFormat, i, err)
		}
		records = append(records, rec)
	}

	t.merge(records)
	return nil
}

// SaveFile writes the table to path through a temporary file and a rename, so
// readers never see a partial file.
func (t *Table) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create table directory: %w", err)
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create table file: %w", err)
	}
	if err := t.Save(f); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close table file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename table file: %w", err)
	}
	return nil
}

// LoadFile merges the table stored at path. A missing file is not an error:
// the table simply starts cold.
func (t *Table) LoadFile(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open table file: %w", err)
	}
	defer f.Close()

	return t.Load(f)
}
