package repository

import (
	"fmt"
	"strings"
)

// patchBuilder accumulates SET clauses for partial updates. Columns are
// added only for fields the caller actually supplied, so untouched columns
// keep their stored values.
type patchBuilder struct {
	sets []string
	args []interface{}
}

// Set appends one column assignment using the next positional placeholder.
func (b *patchBuilder) Set(column string, value interface{}) {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

// Empty reports whether no assignments were added.
func (b *patchBuilder) Empty() bool {
	return len(b.sets) == 0
}

// Next returns the next positional placeholder index for trailing arguments
// such as the WHERE key.
func (b *patchBuilder) Next() int {
	return len(b.args) + 1
}

// Clause joins the accumulated assignments.
func (b *patchBuilder) Clause() string {
	return strings.Join(b.sets, ", ")
}

// Args returns the accumulated positional arguments.
func (b *patchBuilder) Args() []interface{} {
	return b.args
}
