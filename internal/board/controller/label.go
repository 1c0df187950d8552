package controller

import (
	"context"

	"github.com/apper-canvas/holodevboard/internal/board/dto"
	"github.com/apper-canvas/holodevboard/internal/board/models"
	"github.com/apper-canvas/holodevboard/internal/board/service"
)

type LabelController struct {
	services *service.Services
}

func NewLabelController(svc *service.Services) *LabelController {
	return &LabelController{services: svc}
}

func (c *LabelController) ListLabels(ctx context.Context) (dto.ListLabelsResponse, error) {
	labels, err := c.services.Labels.GetAll(ctx)
	if err != nil {
		return dto.ListLabelsResponse{}, err
	}
	return dto.FromLabels(labels), nil
}

func (c *LabelController) GetLabel(ctx context.Context, req dto.GetRequest) (dto.LabelDTO, error) {
	label, err := c.services.Labels.GetByID(ctx, req.ID)
	if err != nil {
		return dto.LabelDTO{}, err
	}
	return dto.FromLabel(label), nil
}

func (c *LabelController) CreateLabel(ctx context.Context, req dto.CreateLabelRequest) (dto.LabelDTO, error) {
	label, err := c.services.Labels.Create(ctx, &service.CreateLabelRequest{
		Name:        req.Name,
		Color:       models.LabelColor(req.Color),
		Description: req.Description,
	})
	if err != nil {
		return dto.LabelDTO{}, err
	}
	return dto.FromLabel(label), nil
}

func (c *LabelController) UpdateLabel(ctx context.Context, req dto.UpdateLabelRequest) (dto.LabelDTO, error) {
	update := &service.UpdateLabelRequest{Name: req.Name, Description: req.Description}
	if req.Color != nil {
		color := models.LabelColor(*req.Color)
		update.Color = &color
	}
	label, err := c.services.Labels.Update(ctx, req.ID, update)
	if err != nil {
		return dto.LabelDTO{}, err
	}
	return dto.FromLabel(label), nil
}

func (c *LabelController) DeleteLabel(ctx context.Context, req dto.GetRequest) (dto.LabelDTO, error) {
	label, err := c.services.Labels.Delete(ctx, req.ID)
	if err != nil {
		return dto.LabelDTO{}, err
	}
	return dto.FromLabel(label), nil
}
