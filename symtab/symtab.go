// Package symtab implements minicc's flat, append-only symbol table.
//
// Grounded on j-alexander3375-Lotus/src/types.go's Variable{Name,Type,Offset}
// plus minicc.c's find_symbol/add_symbol (backward linear search, scope =
// function body, save/restore of the entry count around each function).
package symtab

// Class classifies a symbol's storage.
type Class int

const (
	Global Class = iota
	Param
	Local
)

// Symbol is one entry: a name, its storage classification, and a
// frame-relative byte offset (parameters additionally carry their parameter
// index; globals carry neither and use their name directly as the link-time
// symbol).
type Symbol struct {
	Name       string
	Class      Class
	ParamIndex int
	Offset     int // byte offset from frame pointer, for Param/Local
	IsArray    bool
	ArraySize  int64
}

// Table is a flat, append-only slice of symbols. Lookup scans backward so
// the nearest (most recently appended) declaration shadows earlier ones.
type Table struct {
	entries []Symbol
}

// New creates an empty Table.
func New() *Table {
	return &Table{}
}

// Add appends a new symbol, making it the most-recently-declared one of its
// name for subsequent lookups.
func (t *Table) Add(s Symbol) {
	t.entries = append(t.entries, s)
}

// Find searches from the most recent entry backward. Returns nil if name is
// undeclared.
func (t *Table) Find(name string) *Symbol {
	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].Name == name {
			return &t.entries[i]
		}
	}
	return nil
}

// Len returns the current entry count — the checkpoint to save before
// entering a function body.
func (t *Table) Len() int {
	return len(t.entries)
}

// Truncate restores the table to a previously saved length, discarding all
// entries added since — the scope-exit half of the save/restore discipline
// (spec §4.3: scope boundary is the whole function body, not nested blocks).
func (t *Table) Truncate(n int) {
	t.entries = t.entries[:n]
}
