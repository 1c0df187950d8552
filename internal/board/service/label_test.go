package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	apperrors "github.com/apper-canvas/holodevboard/internal/common/errors"
)

func TestLabelCreateDefaultsAndValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	label, err := f.svc.Labels.Create(ctx, &CreateLabelRequest{Name: "Chore"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultLabelColor, label.Color)

	_, err = f.svc.Labels.Create(ctx, &CreateLabelRequest{Name: "Odd", Color: "pink"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestLabelDeleteClearsTaskReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.task(t, f.backlog, "a", f.bug.ID, f.feature.ID)
	b := f.task(t, f.doing, "b", f.bug.ID)
	c := f.task(t, f.doing, "c", f.feature.ID)

	removed, err := f.svc.Labels.Delete(ctx, f.bug.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bug", removed.Name)

	for id, want := range map[int64][]int64{a.ID: {f.feature.ID}, b.ID: {}, c.ID: {f.feature.ID}} {
		got, err := f.svc.Tasks.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got.LabelIDs)
	}

	_, err = f.svc.Labels.GetByID(ctx, f.bug.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestLabelUpdate(t *testing.T) {
	f := newFixture(t)
	color := models.LabelPurple
	label, err := f.svc.Labels.Update(context.Background(), f.feature.ID, &UpdateLabelRequest{Color: &color})
	require.NoError(t, err)
	assert.Equal(t, models.LabelPurple, label.Color)
	assert.Equal(t, "Feature", label.Name)
	assert.Equal(t, []string{"Label updated successfully"}, f.notes.Messages())
}
