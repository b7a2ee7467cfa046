package viewstate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/evanschultz/agenda/internal/domain"
)

// ErrNoDropTarget reports a drop outside every lane.
var ErrNoDropTarget = errors.New("no drop target")

// TaskStore is the backend surface a status move needs.
type TaskStore interface {
	GetTask(context.Context, string) (domain.Task, error)
	UpdateTask(context.Context, string, domain.TaskInput) (domain.Task, error)
}

// Transition is one committed lane move.
type Transition struct {
	TaskID string
	From   domain.Status
	To     domain.Status
}

// Drag tracks one card being carried between lanes.
type Drag struct {
	lifted bool
	taskID string
	source int
	target int
}

// Lifted reports whether a card is being carried.
func (d Drag) Lifted() bool {
	return d.lifted
}

// TaskID returns the carried task id.
func (d Drag) TaskID() string {
	return d.taskID
}

// Source returns the lane the card was lifted from.
func (d Drag) Source() int {
	return d.source
}

// Target returns the hovered lane, or -1 when over no lane.
func (d Drag) Target() int {
	return d.target
}

// Lift picks up a card from lane.
func (d *Drag) Lift(taskID string, lane int) bool {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" || lane < 0 {
		return false
	}
	*d = Drag{lifted: true, taskID: taskID, source: lane, target: lane}
	return true
}

// Hover moves the carried card over lane; negative lanes mean no target.
func (d *Drag) Hover(lane int) {
	if !d.lifted {
		return
	}
	if lane < 0 {
		lane = -1
	}
	d.target = lane
}

// Cancel drops the carried card without a move.
func (d *Drag) Cancel() {
	*d = Drag{}
}

// Drop releases the card over board and returns the move to commit.
// Releasing over the source lane still yields a transition.
func (d *Drag) Drop(board Board) (Transition, error) {
	if !d.lifted {
		return Transition{}, ErrNoDropTarget
	}
	carried := *d
	d.Cancel()
	if carried.target < 0 || carried.target >= len(board.Lanes) {
		return Transition{}, ErrNoDropTarget
	}
	from := domain.Status("")
	if carried.source < len(board.Lanes) {
		from = board.Lanes[carried.source].Status
	}
	return Transition{
		TaskID: carried.taskID,
		From:   from,
		To:     board.Lanes[carried.target].Status,
	}, nil
}

// CommitTransition fetches the current task, sets the target status, and writes it back once.
// A failed write is not rolled back; the next full board load decides lane placement.
func CommitTransition(ctx context.Context, store TaskStore, tr Transition) (domain.Task, error) {
	if store == nil {
		return domain.Task{}, fmt.Errorf("commit transition: task store is required")
	}
	if !tr.To.Valid() {
		return domain.Task{}, fmt.Errorf("commit transition: %w: %q", domain.ErrInvalidStatus, tr.To)
	}
	task, err := store.GetTask(ctx, tr.TaskID)
	if err != nil {
		return domain.Task{}, fmt.Errorf("load task %s: %w", tr.TaskID, err)
	}
	in := task.Input()
	in.Status = tr.To
	updated, err := store.UpdateTask(ctx, tr.TaskID, in)
	if err != nil {
		return domain.Task{}, fmt.Errorf("update task %s: %w", tr.TaskID, err)
	}
	return updated, nil
}
