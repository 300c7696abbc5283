package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPatchBuilderEmpty(t *testing.T) {
	b := &patchBuilder{}
	require.True(t, b.Empty())
	require.Equal(t, 1, b.Next())
	require.Empty(t, b.Clause())
	require.Empty(t, b.Args())
}

func TestPatchBuilderAccumulatesAssignments(t *testing.T) {
	b := &patchBuilder{}
	b.Set("subject", "Budget request")
	b.Set("priority", "urgent")
	b.Set("notes", nil)

	require.False(t, b.Empty())
	require.Equal(t, "subject = $1, priority = $2, notes = $3", b.Clause())
	require.Equal(t, 4, b.Next())
	require.Equal(t, []interface{}{"Budget request", "urgent", nil}, b.Args())
}
