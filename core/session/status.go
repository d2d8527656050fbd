package session

// Status records what happened to a session during one request.
type Status int

const (
	// Unchanged is the status of every freshly attached session.
	Unchanged Status = iota
	// Changed means values or the timeout were modified.
	Changed
	// Renewed means the session id should be rotated.
	Renewed
	// Purged means the session must be deleted on both client and server. It is absorbing.
	Purged
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case Changed:
		return "changed"
	case Renewed:
		return "renewed"
	case Purged:
		return "purged"
	default:
		return "unknown"
	}
}

type event int

const (
	eventMutate event = iota
	eventRenew
	eventPurge
)

// next is the only place status transitions are decided.
//
//	           mutate    renew     purge
//	Unchanged  Changed   Renewed   Purged
//	Changed    Changed   Renewed   Purged
//	Renewed    Renewed   Renewed   Purged
//	Purged     Purged    Purged    Purged
func (s Status) next(e event) Status {
	if s == Purged {
		return Purged
	}
	switch e {
	case eventPurge:
		return Purged
	case eventRenew:
		return Renewed
	case eventMutate:
		if s == Unchanged {
			return Changed
		}
	}
	return s
}
