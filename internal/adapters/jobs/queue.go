package jobs

import (
	"log/slog"

	"github.com/google/uuid"

	"meetpoll/internal/domain"
)

// job is one queued unit of work.
type job struct {
	id   string
	kind string
	run  func()
}

// Queue is an in-process fire-and-forget job sink: a buffered channel drained
// by a single worker goroutine. Enqueue drops the job when the buffer is full
// rather than block the caller.
type Queue struct {
	jobs   chan job
	logger *slog.Logger
	done   chan struct{}
}

// NewQueue starts the worker and returns the queue.
func NewQueue(buffer int, logger *slog.Logger) *Queue {
	q := &Queue{
		jobs:   make(chan job, buffer),
		logger: logger,
		done:   make(chan struct{}),
	}
	go q.work()
	return q
}

func (q *Queue) work() {
	defer close(q.done)
	for j := range q.jobs {
		j.run()
		q.logger.Info("job processed", "job_id", j.id, "kind", j.kind)
	}
}

// Close stops accepting jobs and waits for the worker to drain the buffer.
func (q *Queue) Close() {
	close(q.jobs)
	<-q.done
}

func (q *Queue) enqueue(kind string, run func()) {
	j := job{id: uuid.NewString(), kind: kind, run: run}
	select {
	case q.jobs <- j:
		q.logger.Info("job enqueued", "job_id", j.id, "kind", kind)
	default:
		q.logger.Warn("job dropped, queue full", "job_id", j.id, "kind", kind)
	}
}

// EnqueueEventCreated submits the event-created job. No return value: the
// caller never observes the outcome.
func (q *Queue) EnqueueEventCreated(event *domain.Event) {
	eventUUID := event.UUID
	name := event.Name
	q.enqueue("event_created", func() {
		q.logger.Info("event created", "event_uuid", eventUUID, "name", name)
	})
}
