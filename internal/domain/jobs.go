package domain

// JobQueue is the fire-and-forget background job sink. Enqueue operations
// never block the caller and no return value is consumed.
type JobQueue interface {
	EnqueueEventCreated(event *Event)
}
