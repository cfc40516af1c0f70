// Package queue carries generation tasks from job creation to the worker pool.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrQueueFull = errors.New("queue is full")

// Task asks a worker to run generation for one job.
type Task struct {
	JobID      uuid.UUID `json:"jobId"`
	ProjectID  uuid.UUID `json:"projectId"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

type Queue interface {
	Enqueue(ctx context.Context, task Task) error
}

// Source hands out deliveries until ctx is cancelled.
type Source interface {
	Deliveries(ctx context.Context) (<-chan Delivery, error)
}

// Delivery is one received task. Exactly one of Ack or Fail should be called.
type Delivery struct {
	Task Task
	ack  func() error
	fail func(error) error
}

func NewDelivery(task Task, ack func() error, fail func(error) error) Delivery {
	return Delivery{Task: task, ack: ack, fail: fail}
}

func (d Delivery) Ack() error {
	if d.ack == nil {
		return nil
	}
	return d.ack()
}

func (d Delivery) Fail(err error) error {
	if d.fail == nil {
		return nil
	}
	return d.fail(err)
}
