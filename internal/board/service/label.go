package service

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	"github.com/apper-canvas/holodevboard/internal/events"
)

// LabelService manages the global label set.
type LabelService struct {
	base
}

// GetAll returns every label in id order.
func (s *LabelService) GetAll(ctx context.Context) ([]*models.Label, error) {
	labels, err := s.repo.ListLabels(ctx)
	if err != nil {
		return []*models.Label{}, s.readFailed(ctx, "load labels", err)
	}
	return labels, nil
}

// GetByID returns one label.
func (s *LabelService) GetByID(ctx context.Context, id int64) (*models.Label, error) {
	label, err := s.repo.GetLabel(ctx, id)
	if err != nil {
		return nil, s.readFailed(ctx, "load label", err)
	}
	return label, nil
}

// Create stores a new label; the color defaults to gray.
func (s *LabelService) Create(ctx context.Context, req *CreateLabelRequest) (*models.Label, error) {
	name, verr := required("name", req.Name)
	if verr != nil {
		return nil, s.invalid(ctx, verr)
	}
	color := req.Color
	if color == "" {
		color = models.DefaultLabelColor
	}
	if verr := validateLabelColor(color); verr != nil {
		return nil, s.invalid(ctx, verr)
	}

	label := &models.Label{Name: name, Color: color, Description: req.Description}
	if err := s.repo.CreateLabel(ctx, label); err != nil {
		return nil, s.writeFailed(ctx, "create label", err)
	}

	s.publish(ctx, events.LabelCreated, labelEventData(label))
	s.logger.Info("label created", zap.Int64("label_id", label.ID), zap.String("name", label.Name))
	s.succeeded(ctx, "created")
	return label, nil
}

// Update merges the set fields of req into the label.
func (s *LabelService) Update(ctx context.Context, id int64, req *UpdateLabelRequest) (*models.Label, error) {
	var name string
	if req.Name != nil {
		trimmed, verr := required("name", *req.Name)
		if verr != nil {
			return nil, s.invalid(ctx, verr)
		}
		name = trimmed
	}
	if req.Color != nil {
		if verr := validateLabelColor(*req.Color); verr != nil {
			return nil, s.invalid(ctx, verr)
		}
	}

	label, err := s.repo.GetLabel(ctx, id)
	if err != nil {
		return nil, s.writeFailed(ctx, "update label", err)
	}
	if req.Name != nil {
		label.Name = name
	}
	if req.Color != nil {
		label.Color = *req.Color
	}
	if req.Description != nil {
		label.Description = *req.Description
	}
	label.ID = id
	label.UpdatedAt = s.now()

	if err := s.repo.UpdateLabel(ctx, label); err != nil {
		return nil, s.writeFailed(ctx, "update label", err)
	}

	s.publish(ctx, events.LabelUpdated, labelEventData(label))
	s.logger.Info("label updated", zap.Int64("label_id", id))
	s.succeeded(ctx, "updated")
	return label, nil
}

// Delete clears the label from every task that references it, removes the
// label and returns it.
func (s *LabelService) Delete(ctx context.Context, id int64) (*models.Label, error) {
	label, err := s.repo.GetLabel(ctx, id)
	if err != nil {
		return nil, s.writeFailed(ctx, "delete label", err)
	}

	tasks, err := s.repo.ListTasks(ctx, 0)
	if err != nil {
		return nil, s.writeFailed(ctx, "delete label", err)
	}
	cleared := 0
	for _, t := range tasks {
		if !t.HasLabel(id) {
			continue
		}
		t.LabelIDs = slices.DeleteFunc(t.LabelIDs, func(l int64) bool { return l == id })
		t.UpdatedAt = s.now()
		if err := s.repo.UpdateTask(ctx, t); err != nil {
			return nil, s.writeFailed(ctx, "delete label", err)
		}
		s.publish(ctx, events.TaskUpdated, taskEventData(t))
		cleared++
	}

	if err := s.repo.DeleteLabel(ctx, id); err != nil {
		return nil, s.writeFailed(ctx, "delete label", err)
	}

	s.publish(ctx, events.LabelDeleted, labelEventData(label))
	s.logger.Info("label deleted", zap.Int64("label_id", id), zap.Int("tasks_cleared", cleared))
	s.succeeded(ctx, "deleted")
	return label, nil
}

func labelEventData(l *models.Label) map[string]interface{} {
	return map[string]interface{}{
		"label_id":    l.ID,
		"name":        l.Name,
		"color":       string(l.Color),
		"description": l.Description,
	}
}
