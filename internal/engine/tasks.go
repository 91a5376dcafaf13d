package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/petrijr/socialflow/internal/persistence"
	"github.com/petrijr/socialflow/pkg/api"
	"github.com/petrijr/socialflow/pkg/log"
)

// recipientOutcome is what processing one CreateTask recipient produced.
// An empty taskID means the recipient was skipped or failed before the task
// was persisted.
type recipientOutcome struct {
	taskID string
	result any
	ran    bool
}

func (e *engineImpl) CreateTask(ctx context.Context, req api.TaskRequest) ([]any, error) {
	if req.From == "" || req.EventType == "" {
		return nil, fmt.Errorf("%w: task requires from and eventType", api.ErrInvalidRequest)
	}
	recipients := normalizeRecipients(req.To)
	if len(recipients) == 0 {
		return nil, fmt.Errorf("%w: task requires at least one recipient", api.ErrInvalidRequest)
	}
	if req.Creator == "" {
		req.Creator = req.From
	}

	handlers, _ := e.registry.Get(req.EventType)

	// Recipients are independent; the first error is reported once every
	// recipient has been attempted, and siblings are not cancelled.
	outcomes := make([]recipientOutcome, len(recipients))
	var g errgroup.Group
	g.SetLimit(e.parallelism)
	for i, to := range recipients {
		g.Go(func() error {
			out, err := e.createForRecipient(ctx, req, to, handlers.Action)
			outcomes[i] = out
			return err
		})
	}
	runErr := g.Wait()

	var ids []string
	results := make([]any, 0, len(recipients))
	for _, out := range outcomes {
		if out.taskID != "" {
			ids = append(ids, out.taskID)
		}
		if out.ran {
			results = append(results, out.result)
		}
	}

	// One batched write for every task this call created.
	if len(ids) > 0 {
		err := e.lists.Append(ctx, api.KindUser, req.Creator, api.FieldTracking, ids...)
		if err != nil {
			if runErr != nil {
				e.logger.ErrorContext(ctx, "tracking append failed",
					log.UserID(req.Creator), log.EventType(req.EventType), log.Error(err))
				return nil, runErr
			}
			return nil, err
		}
	}
	if runErr != nil {
		return nil, runErr
	}
	return results, nil
}

func (e *engineImpl) createForRecipient(
	ctx context.Context, req api.TaskRequest, to string, action api.HandlerFunc,
) (recipientOutcome, error) {
	n, err := e.records.Count(ctx, api.KindTask,
		persistence.Where(api.FieldFrom, req.From).
			And(api.FieldTo, to).
			And(api.FieldEventType, string(req.EventType)),
	)
	if err != nil {
		return recipientOutcome{}, err
	}
	if n > 0 {
		e.logger.DebugContext(ctx, "task already open",
			slog.String("from", req.From), slog.String("to", to), log.EventType(req.EventType))
		e.observer.OnTaskSkipped(ctx, req, to)
		e.record(ctx, api.HistoryEvent{
			Subject:   req.Creator,
			Type:      api.HistoryTaskSkipped,
			EventType: req.EventType,
			From:      req.From,
			To:        to,
		})
		return recipientOutcome{}, nil
	}

	now := e.timestamp()
	task := &api.Task{
		From:            req.From,
		To:              to,
		EventType:       req.EventType,
		Creator:         req.Creator,
		Content:         req.Content,
		CreateAt:        now,
		LastUpdatedTime: now,
	}
	if err := e.records.Save(ctx, task); err != nil {
		return recipientOutcome{}, err
	}
	out := recipientOutcome{taskID: task.ID}

	if err := e.lists.Append(ctx, api.KindUser, to, api.FieldTasks, task.ID); err != nil {
		return out, err
	}

	e.observer.OnTaskCreated(ctx, task)
	e.record(ctx, api.HistoryEvent{
		Subject:   task.ID,
		Type:      api.HistoryTaskCreated,
		EventType: task.EventType,
		From:      task.From,
		To:        task.To,
	})

	result, err := e.runHandler(ctx, task, api.PhaseAction, action)
	if err != nil {
		return out, err
	}
	out.result = result
	out.ran = true
	return out, nil
}

func (e *engineImpl) FinishTask(ctx context.Context, id api.TaskID) (any, error) {
	var task api.Task
	if err := e.records.Fetch(ctx, id, &task); err != nil {
		return nil, err
	}

	handlers, _ := e.registry.Get(task.EventType)
	result, err := e.runHandler(ctx, &task, api.PhaseFinish, handlers.Finish)
	if err != nil {
		// The task stays open so the finish can be retried.
		return nil, err
	}

	if err := e.closeTask(ctx, &task); err != nil {
		return nil, err
	}

	e.observer.OnTaskFinished(ctx, &task)
	e.record(ctx, api.HistoryEvent{
		Subject:   task.ID,
		Type:      api.HistoryTaskFinished,
		EventType: task.EventType,
		From:      task.From,
		To:        task.To,
	})
	return result, nil
}

func (e *engineImpl) CancelTask(ctx context.Context, id api.TaskID) error {
	var task api.Task
	if err := e.records.Fetch(ctx, id, &task); err != nil {
		return err
	}

	if err := e.closeTask(ctx, &task); err != nil {
		return err
	}

	e.observer.OnTaskCancelled(ctx, &task)
	e.record(ctx, api.HistoryEvent{
		Subject:   task.ID,
		Type:      api.HistoryTaskCancelled,
		EventType: task.EventType,
		From:      task.From,
		To:        task.To,
	})
	return nil
}

func (e *engineImpl) GetTask(ctx context.Context, id api.TaskID) (*api.Task, error) {
	var task api.Task
	if err := e.records.Fetch(ctx, id, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// closeTask drops the task id from its tracking owner and recipient, then
// deletes the task. Ids already absent from a list are ignored, as are user
// records that no longer exist.
func (e *engineImpl) closeTask(ctx context.Context, task *api.Task) error {
	refs := []struct {
		userID string
		field  string
	}{
		{trackingOwner(task), api.FieldTracking},
		{task.To, api.FieldTasks},
	}
	for _, ref := range refs {
		_, err := e.lists.Remove(ctx, api.KindUser, ref.userID, ref.field, task.ID)
		if api.IsNotFound(err) {
			e.logger.WarnContext(ctx, "task reference holder missing",
				log.TaskID(task.ID), log.UserID(ref.userID), slog.String("field", ref.field))
			continue
		}
		if err != nil {
			return err
		}
	}
	return e.records.Remove(ctx, api.KindTask, task.ID)
}

// runHandler invokes fn when it is registered. Handler errors are returned
// unmodified; the call's Attempt is marked so retrying callers leave it be.
func (e *engineImpl) runHandler(
	ctx context.Context, task *api.Task, phase api.HandlerPhase, fn api.HandlerFunc,
) (any, error) {
	if fn == nil {
		return nil, nil
	}

	// A finish handler may have applied part of its side effect even when
	// it succeeds and the cleanup after it fails.
	if phase == api.PhaseFinish {
		api.MarkIrreversible(ctx)
	}

	start := time.Now()
	result, err := fn(ctx, e, task)
	e.observer.OnHandler(ctx, task, phase, err, time.Since(start))

	if err != nil {
		api.MarkIrreversible(ctx)
		e.record(ctx, api.HistoryEvent{
			Subject:   task.ID,
			Type:      api.HistoryHandlerFailed,
			EventType: task.EventType,
			From:      task.From,
			To:        task.To,
			Detail:    string(phase) + ": " + err.Error(),
		})
		return nil, err
	}
	return result, nil
}

// normalizeRecipients drops empty ids and duplicates, keeping first-seen
// order.
func normalizeRecipients(to []string) []string {
	out := make([]string, 0, len(to))
	for _, id := range to {
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}
