package taskqueue

import (
	"bytes"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultQueue is used by tasks that do not name a queue.
const DefaultQueue = "default"

// Task is one unit of deferred work.
type Task struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Queue       string    `json:"queue"`
	Payload     []byte    `json:"payload"`
	Attempt     int       `json:"attempt"`
	Fingerprint uint64    `json:"fingerprint"`
	EnqueuedAt  time.Time `json:"enqueued_at"`
}

// TaskOption customises NewTask.
type TaskOption func(*Task)

// OnQueue routes the task to queue.
func OnQueue(queue string) TaskOption {
	return func(t *Task) {
		if queue != "" {
			t.Queue = queue
		}
	}
}

// NewTask encodes payload and addresses the task to the handler registered as name.
func NewTask(name string, payload any, opts ...TaskOption) (Task, error) {
	body, err := Marshal(payload)
	if err != nil {
		return Task{}, fmt.Errorf("taskqueue: encode %s payload: %w", name, err)
	}
	t := Task{
		ID:          uuid.NewString(),
		Name:        name,
		Queue:       DefaultQueue,
		Payload:     body,
		Fingerprint: xxhash.Sum64(body),
		EnqueuedAt:  time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t, nil
}

// Decode unpacks the payload into v.
func (t Task) Decode(v any) error {
	if err := Unmarshal(t.Payload, v); err != nil {
		return fmt.Errorf("taskqueue: decode %s payload: %w", t.Name, err)
	}
	return nil
}

// FingerprintHex renders the payload fingerprint for logs.
func (t Task) FingerprintHex() string {
	return fmt.Sprintf("%016x", t.Fingerprint)
}

func (t Task) retry() Task {
	t.Attempt++
	return t
}

// Marshal encodes v as msgpack, honouring json struct tags.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes msgpack produced by Marshal.
func Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}
