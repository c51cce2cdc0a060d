package workspace

import "fmt"

// State is the load state of a resource collection.
type State string

const (
	Idle    State = "idle"
	Loading State = "loading"
	Loaded  State = "loaded"
	Failed  State = "error"
)

// transitions lists the states each state may move to.
var transitions = map[State][]State{
	Idle:    {Loading},
	Loading: {Loaded, Failed, Idle},
	Loaded:  {Loading, Idle},
	Failed:  {Loading, Idle},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Resource is a collection fetched from the persistence gateway.
type Resource[T any] struct {
	State State `json:"state"`
	Items []T   `json:"items"`
}

func newResource[T any]() Resource[T] {
	return Resource[T]{State: Idle, Items: []T{}}
}

func (r *Resource[T]) moveTo(to State) error {
	if !CanTransition(r.State, to) {
		return fmt.Errorf("invalid resource transition %s -> %s", r.State, to)
	}
	r.State = to
	if to == Idle || to == Failed {
		r.Items = []T{}
	}
	return nil
}
