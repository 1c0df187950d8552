package service

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	apperrors "github.com/apper-canvas/holodevboard/internal/common/errors"
)

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func required(field, value string) (string, *apperrors.AppError) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperrors.ValidationError(field, "is required")
	}
	return value, nil
}

func validateBoardColor(color string) *apperrors.AppError {
	if !hexColor.MatchString(color) {
		return apperrors.ValidationError("color", fmt.Sprintf("%q is not a hex color", color))
	}
	return nil
}

func validatePriority(p models.Priority) *apperrors.AppError {
	if !p.Valid() {
		return apperrors.ValidationError("priority", fmt.Sprintf("%q is not one of low, medium, high", p))
	}
	return nil
}

func validateLabelColor(c models.LabelColor) *apperrors.AppError {
	if !c.Valid() {
		return apperrors.ValidationError("color", fmt.Sprintf("%q is not a label color", c))
	}
	return nil
}

// validateDueDate rejects dates before the start of today (UTC).
func validateDueDate(due time.Time, now time.Time) *apperrors.AppError {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if due.UTC().Before(today) {
		return apperrors.ValidationError("due_date", "must not be in the past")
	}
	return nil
}

// dedupeLabels drops repeated ids keeping first occurrences.
func dedupeLabels(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
