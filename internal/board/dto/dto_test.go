package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/apper-canvas/holodevboard/internal/board/models"
)

func TestFromTaskLabelPreview(t *testing.T) {
	labels := []*models.Label{
		{ID: 1, Name: "bug", Color: models.LabelRed},
		{ID: 2, Name: "ui", Color: models.LabelBlue},
		{ID: 3, Name: "api", Color: models.LabelGreen},
		{ID: 4, Name: "docs", Color: models.LabelGray},
		{ID: 5, Name: "perf", Color: models.LabelOrange},
	}
	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	task := &models.Task{ID: 9, Title: "x", Priority: models.PriorityHigh, LabelIDs: []int64{5, 1, 2, 3, 77}, DueDate: &due}

	got := FromTask(task, labels)
	assert.Len(t, got.Labels, LabelPreviewLimit)
	assert.Equal(t, "perf", got.Labels[0].Name)
	assert.Equal(t, "orange", got.Labels[0].Color)
	assert.Equal(t, 1, got.MoreLabels)
	assert.Equal(t, "high", got.Priority)
	assert.Equal(t, "2026-05-01", *got.DueDate)

	bare := FromTask(&models.Task{ID: 1}, labels)
	assert.Empty(t, bare.Labels)
	assert.NotNil(t, bare.Labels)
	assert.Zero(t, bare.MoreLabels)
	assert.Nil(t, bare.DueDate)
}
