package reply

import (
	"github.com/chatzinho/chatzinho/backend/internal/analysis/normalize"
)

// Table is an immutable phrase -> response mapping. Phrases are reduced to
// canonical keys when the table is built, so lookups are exact matches
// against normalized input. A Table is safe for concurrent readers.
type Table struct {
	responses map[string]string
	entries   []Entry
}

// NewTable builds a Table from entries. When two phrases share a canonical
// key the later entry wins. Entries with a blank key are skipped.
func NewTable(entries []Entry) *Table {
	t := &Table{
		responses: make(map[string]string, len(entries)),
		entries:   make([]Entry, 0, len(entries)),
	}

	index := make(map[string]int, len(entries))
	for _, entry := range entries {
		key := normalize.Key(entry.Phrase)
		if key == "" {
			continue
		}

		canonical := Entry{Phrase: key, Response: entry.Response}
		if i, ok := index[key]; ok {
			t.entries[i] = canonical
		} else {
			index[key] = len(t.entries)
			t.entries = append(t.entries, canonical)
		}
		t.responses[key] = entry.Response
	}

	return t
}

// Lookup returns the response stored under an already-normalized key.
func (t *Table) Lookup(key string) (string, bool) {
	if t == nil {
		return "", false
	}
	response, ok := t.responses[key]
	return response, ok
}

// Entries returns the canonical entries in definition order.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	return append([]Entry(nil), t.entries...)
}

// Len reports how many distinct keys the table holds.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
