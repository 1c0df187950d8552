// Package events defines the subjects published on the DevBoard event bus.
package events

// Board events
const (
	BoardCreated = "board.created"
	BoardUpdated = "board.updated"
	BoardDeleted = "board.deleted"
)

// Column events
const (
	ColumnCreated    = "column.created"
	ColumnUpdated    = "column.updated"
	ColumnDeleted    = "column.deleted"
	ColumnsReordered = "column.reordered"
)

// Task events
const (
	TaskCreated = "task.created"
	TaskUpdated = "task.updated"
	TaskMoved   = "task.moved"
	TaskDeleted = "task.deleted"
)

// Label events
const (
	LabelCreated = "label.created"
	LabelUpdated = "label.updated"
	LabelDeleted = "label.deleted"
)

// NotificationCreated carries user-facing messages to connected clients.
const NotificationCreated = "notification.created"
