package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	apperrors "github.com/apper-canvas/holodevboard/internal/common/errors"
)

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// Board operations

func (r *Repository) ListBoards(ctx context.Context) ([]*models.Board, error) {
	return findAll[models.Board](ctx, r.db.Collection(boardsCollection), bson.M{}, byID())
}

func (r *Repository) GetBoard(ctx context.Context, id int64) (*models.Board, error) {
	return findOne[models.Board](ctx, r.db.Collection(boardsCollection), "board", id)
}

func (r *Repository) CreateBoard(ctx context.Context, board *models.Board) error {
	id, err := r.nextID(ctx, boardsCollection)
	if err != nil {
		return err
	}
	board.ID = id
	board.CreatedAt = now()
	board.UpdatedAt = board.CreatedAt
	_, err = r.db.Collection(boardsCollection).InsertOne(ctx, board)
	return err
}

func (r *Repository) UpdateBoard(ctx context.Context, board *models.Board) error {
	board.UpdatedAt = now()
	return replaceOne(ctx, r.db.Collection(boardsCollection), "board", board.ID, board)
}

func (r *Repository) DeleteBoard(ctx context.Context, id int64) error {
	return deleteOne(ctx, r.db.Collection(boardsCollection), "board", id)
}

// Column operations

func (r *Repository) ListColumns(ctx context.Context, boardID int64) ([]*models.Column, error) {
	filter := bson.M{}
	if boardID != 0 {
		filter["board_id"] = boardID
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "board_id", Value: 1},
		{Key: "position", Value: 1},
		{Key: "_id", Value: 1},
	})
	return findAll[models.Column](ctx, r.db.Collection(columnsCollection), filter, opts)
}

func (r *Repository) GetColumn(ctx context.Context, id int64) (*models.Column, error) {
	return findOne[models.Column](ctx, r.db.Collection(columnsCollection), "column", id)
}

func (r *Repository) CreateColumn(ctx context.Context, column *models.Column) error {
	ok, err := r.exists(ctx, boardsCollection, column.BoardID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("board", column.BoardID)
	}
	id, err := r.nextID(ctx, columnsCollection)
	if err != nil {
		return err
	}
	column.ID = id
	column.CreatedAt = now()
	column.UpdatedAt = column.CreatedAt
	_, err = r.db.Collection(columnsCollection).InsertOne(ctx, column)
	return err
}

func (r *Repository) UpdateColumn(ctx context.Context, column *models.Column) error {
	column.UpdatedAt = now()
	return replaceOne(ctx, r.db.Collection(columnsCollection), "column", column.ID, column)
}

func (r *Repository) DeleteColumn(ctx context.Context, id int64) error {
	return deleteOne(ctx, r.db.Collection(columnsCollection), "column", id)
}

// Label operations

func (r *Repository) ListLabels(ctx context.Context) ([]*models.Label, error) {
	return findAll[models.Label](ctx, r.db.Collection(labelsCollection), bson.M{}, byID())
}

func (r *Repository) GetLabel(ctx context.Context, id int64) (*models.Label, error) {
	return findOne[models.Label](ctx, r.db.Collection(labelsCollection), "label", id)
}

func (r *Repository) CreateLabel(ctx context.Context, label *models.Label) error {
	id, err := r.nextID(ctx, labelsCollection)
	if err != nil {
		return err
	}
	label.ID = id
	label.CreatedAt = now()
	label.UpdatedAt = label.CreatedAt
	_, err = r.db.Collection(labelsCollection).InsertOne(ctx, label)
	return err
}

func (r *Repository) UpdateLabel(ctx context.Context, label *models.Label) error {
	label.UpdatedAt = now()
	return replaceOne(ctx, r.db.Collection(labelsCollection), "label", label.ID, label)
}

func (r *Repository) DeleteLabel(ctx context.Context, id int64) error {
	return deleteOne(ctx, r.db.Collection(labelsCollection), "label", id)
}

// Task operations

func (r *Repository) ListTasks(ctx context.Context, boardID int64) ([]*models.Task, error) {
	filter := bson.M{}
	if boardID != 0 {
		filter["board_id"] = boardID
	}
	return r.findTasks(ctx, filter)
}

func (r *Repository) ListTasksByColumn(ctx context.Context, columnID int64) ([]*models.Task, error) {
	return r.findTasks(ctx, bson.M{"column_id": columnID})
}

func (r *Repository) findTasks(ctx context.Context, filter bson.M) ([]*models.Task, error) {
	tasks, err := findAll[models.Task](ctx, r.db.Collection(tasksCollection), filter, byID())
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		normalizeTask(t)
	}
	return tasks, nil
}

func (r *Repository) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	task, err := findOne[models.Task](ctx, r.db.Collection(tasksCollection), "task", id)
	if err != nil {
		return nil, err
	}
	normalizeTask(task)
	return task, nil
}

func (r *Repository) CreateTask(ctx context.Context, task *models.Task) error {
	ok, err := r.exists(ctx, columnsCollection, task.ColumnID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("column", task.ColumnID)
	}
	id, err := r.nextID(ctx, tasksCollection)
	if err != nil {
		return err
	}
	task.ID = id
	task.CreatedAt = now()
	task.UpdatedAt = task.CreatedAt
	if task.LabelIDs == nil {
		task.LabelIDs = []int64{}
	}
	_, err = r.db.Collection(tasksCollection).InsertOne(ctx, task)
	return err
}

func (r *Repository) UpdateTask(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = now()
	if task.LabelIDs == nil {
		task.LabelIDs = []int64{}
	}
	return replaceOne(ctx, r.db.Collection(tasksCollection), "task", task.ID, task)
}

func (r *Repository) DeleteTask(ctx context.Context, id int64) error {
	return deleteOne(ctx, r.db.Collection(tasksCollection), "task", id)
}

// normalizeTask restores the UTC location and a non-nil label slice after decoding.
func normalizeTask(t *models.Task) {
	if t.LabelIDs == nil {
		t.LabelIDs = []int64{}
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	if t.DueDate != nil {
		d := t.DueDate.UTC()
		t.DueDate = &d
	}
}
