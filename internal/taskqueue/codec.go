package taskqueue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/petrijr/socialflow/pkg/api"
)

// envelope is the wire shape of a Command in persistent queues. The payload
// is kept raw until the command type is known.
type envelope struct {
	ID         string          `json:"id"`
	Type       CommandType     `json:"type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
	Attempts   int             `json:"attempts"`
}

// EncodeCommand serializes a Command for a persistent queue.
func EncodeCommand(c Command) ([]byte, error) {
	env := envelope{
		ID:         c.ID,
		Type:       c.Type,
		EnqueuedAt: c.EnqueuedAt,
		Attempts:   c.Attempts,
	}
	if c.Payload != nil {
		raw, err := json.Marshal(c.Payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", c.Type, err)
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}

// DecodeCommand restores a Command, decoding the payload into the concrete
// api payload type for its command type.
func DecodeCommand(data []byte) (*Command, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	payload, err := decodePayload(env.Type, env.Payload)
	if err != nil {
		return nil, err
	}
	return &Command{
		ID:         env.ID,
		Type:       env.Type,
		Payload:    payload,
		EnqueuedAt: env.EnqueuedAt,
		Attempts:   env.Attempts,
	}, nil
}

func decodePayload(t CommandType, raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var (
		v   any
		err error
	)
	switch t {
	case CommandCreateTask:
		var p api.CreateTaskPayload
		err = json.Unmarshal(raw, &p)
		v = p
	case CommandFinishTask:
		var p api.FinishTaskPayload
		err = json.Unmarshal(raw, &p)
		v = p
	case CommandCancelTask:
		var p api.CancelTaskPayload
		err = json.Unmarshal(raw, &p)
		v = p
	case CommandSendMessage:
		var p api.SendMessagePayload
		err = json.Unmarshal(raw, &p)
		v = p
	default:
		// Unknown commands keep their payload as generic JSON so the worker
		// can still report them.
		err = json.Unmarshal(raw, &v)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", t, err)
	}
	return v, nil
}
