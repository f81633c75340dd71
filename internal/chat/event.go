package chat

// PartAction - describes why a connection has left the chat.
type PartAction int

const (
	_ PartAction = iota
	// PartActionLeft - the peer closed its connection (EOF).
	PartActionLeft
	// PartActionFailed - reading from the connection failed.
	PartActionFailed
	// PartActionOverflow - the peer sent a line longer than allowed.
	PartActionOverflow
	// PartActionShutdown - the server is stopping.
	PartActionShutdown
)

func (a PartAction) String() string {
	switch a {
	case PartActionLeft:
		return "left"
	case PartActionFailed:
		return "failed"
	case PartActionOverflow:
		return "overflow"
	case PartActionShutdown:
		return "shutdown"
	default:
		return "unknown part action"
	}
}
