package api

// Queue command kinds understood by the worker.
const (
	CommandCreateTask  = "create-task"
	CommandFinishTask  = "finish-task"
	CommandCancelTask  = "cancel-task"
	CommandSendMessage = "send-message"
)

// CreateTaskPayload is the payload for a "create-task" command placed on a
// task queue. It is public so both the worker and producers can depend on a
// common type without creating an import cycle.
type CreateTaskPayload struct {
	Request TaskRequest
}

// FinishTaskPayload is the payload for a "finish-task" command.
type FinishTaskPayload struct {
	TaskID TaskID
}

// CancelTaskPayload is the payload for a "cancel-task" command.
type CancelTaskPayload struct {
	TaskID TaskID
}

// SendMessagePayload is the payload for a "send-message" command.
type SendMessagePayload struct {
	From    UserID
	To      GroupID
	Content string
}
