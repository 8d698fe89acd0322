// Package eco provides ECO (Encyclopedia of Chess Openings) lookup.
package eco

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
)

// Entry is one opening taxonomy entry. Immutable after load.
type Entry struct {
	Name  string
	Code  string
	Moves []string
}

// Database holds the opening taxonomy. Entries keep file-load order;
// that order decides matcher tie-breaks and must stay stable.
type Database struct {
	entries []Entry
	byName  map[string]int   // lowercased full name -> first entry index
	byCode  map[string][]int // taxonomy code -> entry indexes, load order
	byFirst map[string][]int // first move token -> entry indexes, load order
}

// NewDatabase creates an empty opening database.
func NewDatabase() *Database {
	return &Database{
		byName:  make(map[string]int),
		byCode:  make(map[string][]int),
		byFirst: make(map[string][]int),
	}
}

// moveNumberRegex matches move numbers like "1." or "12..."
var moveNumberRegex = regexp.MustCompile(`\d+\.+\s*`)

// rawEntry is the on-disk JSON shape of one taxonomy entry.
type rawEntry struct {
	Name  string `json:"name"`
	Code  string `json:"eco"`
	Moves string `json:"moves"`
}

// LoadDir loads all eco*.json and eco*.json.zst files from a directory,
// sorted by path. A missing directory or zero matching files leaves the
// database empty; the matcher then always answers the sentinel.
func (db *Database) LoadDir(dir string) error {
	var files []string
	for _, pat := range []string{"eco*.json", "eco*.json.zst"} {
		matched, err := filepath.Glob(filepath.Join(dir, pat))
		if err != nil {
			return err
		}
		files = append(files, matched...)
	}
	sort.Strings(files)

	for _, file := range files {
		if err := db.LoadFile(file); err != nil {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

// LoadFile loads a single taxonomy JSON file. The file may hold either
// a JSON array of entries or an object keyed arbitrarily; object keys
// are ignored but entry order is preserved.
func (db *Database) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return err
		}
		defer dec.Close()
		r = dec
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return db.loadJSON(data)
}

// loadJSON parses taxonomy JSON, preserving entry order for both the
// array and object forms.
func (db *Database) loadJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	switch trimmed[0] {
	case '[':
		if _, err := dec.Token(); err != nil { // consume '['
			return err
		}
		for dec.More() {
			var raw rawEntry
			if err := dec.Decode(&raw); err != nil {
				return err
			}
			db.add(raw)
		}
	case '{':
		if _, err := dec.Token(); err != nil { // consume '{'
			return err
		}
		for dec.More() {
			if _, err := dec.Token(); err != nil { // entry key, unused
				return err
			}
			var raw rawEntry
			if err := dec.Decode(&raw); err != nil {
				return err
			}
			db.add(raw)
		}
	default:
		return fmt.Errorf("taxonomy file is neither array nor object")
	}
	return nil
}

// add registers one raw entry. Entries without a name or moves are
// skipped silently.
func (db *Database) add(raw rawEntry) {
	if raw.Name == "" || raw.Moves == "" {
		return
	}
	moves := ParseMoveText(raw.Moves)
	if len(moves) == 0 {
		return
	}

	idx := len(db.entries)
	db.entries = append(db.entries, Entry{
		Name:  raw.Name,
		Code:  raw.Code,
		Moves: moves,
	})

	key := strings.ToLower(raw.Name)
	if _, exists := db.byName[key]; !exists {
		db.byName[key] = idx
	}
	if raw.Code != "" {
		db.byCode[raw.Code] = append(db.byCode[raw.Code], idx)
	}
	db.byFirst[moves[0]] = append(db.byFirst[moves[0]], idx)
}

// ParseMoveText flattens numbered move text like "1.e4 e5 2.Nf3" into
// move tokens.
func ParseMoveText(text string) []string {
	cleaned := moveNumberRegex.ReplaceAllString(text, "")
	return strings.Fields(cleaned)
}

// Entries returns the ordered entry list.
func (db *Database) Entries() []Entry {
	return db.entries
}

// ByName returns the first entry registered under the given full name
// (case-insensitive), or nil.
func (db *Database) ByName(name string) *Entry {
	if idx, ok := db.byName[strings.ToLower(name)]; ok {
		return &db.entries[idx]
	}
	return nil
}

// ByCode returns the first entry registered under a taxonomy code, or
// nil. Used as a representative canonical line when move-based
// matching fails.
func (db *Database) ByCode(code string) *Entry {
	if idxs, ok := db.byCode[code]; ok && len(idxs) > 0 {
		return &db.entries[idxs[0]]
	}
	return nil
}

// Count returns the number of openings loaded.
func (db *Database) Count() int {
	return len(db.entries)
}
