package callsession

// transitions lists every allowed status change. connecting and calling are
// pending states for the web and phone flows and never lead into each other.
var transitions = map[Status][]Status{
	StatusIdle:       {StatusConnecting, StatusCalling},
	StatusConnecting: {StatusConnected, StatusIdle, StatusEnded},
	StatusCalling:    {StatusConnected, StatusIdle, StatusEnded},
	StatusConnected:  {StatusEnded, StatusIdle},
	StatusEnded:      {StatusIdle},
}

// CanTransition reports whether from -> to is a defined transition.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s Status) active() bool {
	switch s {
	case StatusConnecting, StatusCalling, StatusConnected:
		return true
	default:
		return false
	}
}
