package domain

// Status is the reading state of a bookmarked book.
//
//   - StatusTodo: not started yet (default at bookmark creation)
//   - StatusReading: currently reading
//   - StatusDone: finished
type Status string

const (
	StatusTodo    Status = "todo"
	StatusReading Status = "reading"
	StatusDone    Status = "done"
)

// Valid reports whether s is one of the three allowed reading states.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusReading, StatusDone:
		return true
	}
	return false
}

// ParseStatus validates a raw status value coming from a client or the store.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
