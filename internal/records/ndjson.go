package records

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
)

// ReadStats summarizes one NDJSON read pass.
type ReadStats struct {
	Read       int
	Malformed  int
	Duplicates int
}

// ReadFile streams game records from an NDJSON file (transparently
// zstd-decompressed for .zst paths), dropping malformed records and
// duplicates. minMoves <= 0 disables the move-count floor.
func ReadFile(path string, minMoves int) ([]GameRecord, ReadStats, error) {
	var stats ReadStats

	f, err := os.Open(path)
	if err != nil {
		return nil, stats, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, stats, fmt.Errorf("open zstd %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}

	deduper := NewDeduper()
	var out []GameRecord

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		stats.Read++

		var rec GameRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			stats.Malformed++
			continue
		}
		if rec.NumMoves == 0 {
			rec.NumMoves = len(rec.Moves)
		}
		if err := rec.Validate(minMoves); err != nil {
			stats.Malformed++
			continue
		}
		if !deduper.Keep(&rec) {
			continue
		}
		out = append(out, rec)
	}
	stats.Duplicates = deduper.Duplicates()
	if err := scanner.Err(); err != nil {
		return out, stats, err
	}
	return out, stats, nil
}

// WriteFile writes records as NDJSON, zstd-compressed for .zst paths.
func WriteFile(path string, recs []GameRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var w io.Writer = f
	var enc *zstd.Encoder
	if strings.HasSuffix(path, ".zst") {
		enc, err = zstd.NewWriter(f)
		if err != nil {
			return fmt.Errorf("open zstd writer %s: %w", path, err)
		}
		w = enc
	}

	bw := bufio.NewWriter(w)
	for i := range recs {
		data, err := json.Marshal(&recs[i])
		if err != nil {
			return err
		}
		if _, err := bw.Write(data); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			return err
		}
	}
	return nil
}
