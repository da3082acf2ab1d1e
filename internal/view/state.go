package view

import "fmt"

// State is the lifecycle of a collection view.
//
//	Unloaded -> Loading -> Ready
//	                    -> Error (last good window and items retained)
//	Ready|Error -> Loading (paginate, search, refresh, reopen after invalidation)
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
