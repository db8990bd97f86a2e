package orchestration

// State is the coordinator's position in a run.
type State int

// Coordinator states, in the order a successful run visits them. StateFailed
// can be entered from any state.
const (
	StateInit State = iota
	StatePartitioned
	StateStoreCreated
	StateSignalCreated
	StateWorkersSpawned
	StateCollecting
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateInit:           "init",
	StatePartitioned:    "partitioned",
	StateStoreCreated:   "store-created",
	StateSignalCreated:  "signal-created",
	StateWorkersSpawned: "workers-spawned",
	StateCollecting:     "collecting",
	StateDone:           "done",
	StateFailed:         "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}
