package ports

// Recorder receives business events for metrics.
type Recorder interface {
	VoteCast(outcome string)
	PollCreated()
	PollDeleted()
	SignedUp()
	SignedIn(success bool)
}
