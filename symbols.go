// symbols.go: the per-session variable table.
//
// One SymbolTable is owned exclusively by one parse session; nothing here is
// process-wide, so independent programs can be parsed concurrently. Each
// entry owns a mutable storage cell the backend reads and writes — the table
// maps a unique name to exactly one cell for the session's lifetime.
package slate

import "fmt"

// Cell is the storage a variable's value lives in at execution time.
type Cell struct {
	v any
}

func (c *Cell) Get() any  { return c.v }
func (c *Cell) Set(v any) { c.v = v }

// Symbol is one declared variable: its name, declared type, and storage.
type Symbol struct {
	Name string
	Type PrimitiveType
	Cell *Cell
}

// SymbolTable maps declared names to symbols. Insertion order is irrelevant;
// keys are unique per session.
type SymbolTable struct {
	vars map[string]*Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{vars: map[string]*Symbol{}}
}

// Declare inserts a new symbol. A second declaration of the same name fails
// with a RedeclarationError and leaves the first entry untouched.
func (st *SymbolTable) Declare(name string, t PrimitiveType) (*Symbol, error) {
	if _, ok := st.vars[name]; ok {
		return nil, &Error{Kind: DiagRedeclared, Msg: fmt.Sprintf("variable '%s' is already declared", name)}
	}
	sym := &Symbol{Name: name, Type: t, Cell: &Cell{}}
	st.vars[name] = sym
	return sym, nil
}

// Lookup resolves a name to its symbol.
func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	sym, ok := st.vars[name]
	return sym, ok
}

// Len reports how many variables have been declared.
func (st *SymbolTable) Len() int { return len(st.vars) }
