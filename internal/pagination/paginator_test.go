package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		total      int64
		wantNumber int
		wantPages  int
	}{
		{"first page by default", "", 10, 1, 4},
		{"non integer falls back to first", "abc", 10, 1, 4},
		{"zero clamps to last", "0", 10, 4, 4},
		{"negative clamps to last", "-3", 10, 4, 4},
		{"beyond last clamps to last", "99", 10, 4, 4},
		{"exact page", "2", 10, 2, 4},
		{"empty result still has one page", "5", 0, 1, 1},
		{"full last page", "2", 6, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.raw, 3, tt.total)
			assert.Equal(t, tt.wantNumber, p.Number)
			assert.Equal(t, tt.wantPages, p.NumPages)
		})
	}
}

func TestPageNavigation(t *testing.T) {
	p := New("2", 3, 10)
	assert.Equal(t, 3, p.Offset())
	assert.Equal(t, 3, p.Limit())
	assert.True(t, p.HasPrevious())
	assert.True(t, p.HasNext())
	assert.Equal(t, 1, p.PreviousNumber())
	assert.Equal(t, 3, p.NextNumber())

	last := New("4", 3, 10)
	assert.Equal(t, 9, last.Offset())
	assert.False(t, last.HasNext())
	assert.Equal(t, 4, last.NextNumber())

	first := New("1", 3, 10)
	assert.False(t, first.HasPrevious())
	assert.Equal(t, 1, first.PreviousNumber())
}
