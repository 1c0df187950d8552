package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskCloneIsDeep(t *testing.T) {
	due := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)
	orig := &Task{ID: 1, LabelIDs: []int64{1, 2}, DueDate: &due}
	cp := orig.Clone()

	cp.LabelIDs[0] = 99
	*cp.DueDate = cp.DueDate.AddDate(1, 0, 0)

	assert.Equal(t, int64(1), orig.LabelIDs[0])
	assert.Equal(t, 2030, orig.DueDate.Year())
	assert.True(t, orig.HasLabel(2))
	assert.Nil(t, (*Task)(nil).Clone())
}

func TestEnums(t *testing.T) {
	assert.True(t, PriorityHigh.Valid())
	assert.False(t, Priority("urgent").Valid())
	assert.True(t, LabelIndigo.Valid())
	assert.False(t, LabelColor("pink").Valid())
	assert.Len(t, LabelColors, 8)
}

func TestSortColumns(t *testing.T) {
	cols := []*Column{{ID: 3, Position: 2}, {ID: 1, Position: 3}, {ID: 2, Position: 1}}
	SortColumns(cols)
	assert.Equal(t, []int64{2, 3, 1}, []int64{cols[0].ID, cols[1].ID, cols[2].ID})
}

func TestReorderColumns(t *testing.T) {
	cols := []*Column{{ID: 1, Position: 1}, {ID: 2, Position: 2}, {ID: 3, Position: 3}}

	out, ok := ReorderColumns(cols, 1, 2)
	assert.True(t, ok)
	assert.Equal(t, []int64{2, 3, 1}, []int64{out[0].ID, out[1].ID, out[2].ID})
	assert.Equal(t, []int{1, 2, 3}, []int{out[0].Position, out[1].Position, out[2].Position})
	assert.Equal(t, 1, cols[0].Position, "input must not change")

	out, ok = ReorderColumns(cols, 3, -5)
	assert.True(t, ok)
	assert.Equal(t, int64(3), out[0].ID)

	_, ok = ReorderColumns(cols, 9, 0)
	assert.False(t, ok)
}
