package queue

import (
	"context"
	"fmt"
)

// ChannelQueue is an in-process, at-most-once queue. Tasks are lost on restart.
type ChannelQueue struct {
	ch chan Delivery
}

func NewChannelQueue(buffer int) *ChannelQueue {
	return &ChannelQueue{ch: make(chan Delivery, buffer)}
}

// Enqueue never blocks; a full buffer returns ErrQueueFull.
func (q *ChannelQueue) Enqueue(ctx context.Context, task Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.ch <- NewDelivery(task, nil, nil):
		return nil
	default:
		return fmt.Errorf("enqueue job %s: %w", task.JobID, ErrQueueFull)
	}
}

func (q *ChannelQueue) Deliveries(context.Context) (<-chan Delivery, error) {
	return q.ch, nil
}

// Len reports the number of tasks waiting for a worker.
func (q *ChannelQueue) Len() int {
	return len(q.ch)
}
