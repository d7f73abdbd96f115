package input

import "fmt"

// Action is a game-level intent bound to a physical key.
type Action int

const (
	MoveUp Action = iota
	MoveDown
	MoveLeft
	MoveRight
	Run
	Kick
	Interact
	Drop
	numActions
)

var actionNames = [numActions]string{
	MoveUp:    "move_up",
	MoveDown:  "move_down",
	MoveLeft:  "move_left",
	MoveRight: "move_right",
	Run:       "run",
	Kick:      "kick",
	Interact:  "interact",
	Drop:      "drop",
}

func (a Action) String() string {
	if a >= 0 && a < numActions {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Event is one press or release of a bound key.
type Event struct {
	Action  Action
	Pressed bool
}

// Keyboard fans key events out to subscribers. The frontend feeds it from
// its own key polling; systems subscribe from their init hooks.
// Single-goroutine access only (game loop).
type Keyboard struct {
	subs   map[int]func(Event)
	order  []int
	nextID int
	held   [numActions]bool
}

func NewKeyboard() *Keyboard {
	return &Keyboard{subs: make(map[int]func(Event))}
}

// Subscribe registers fn for every future event. The returned func removes
// the subscription; calling it twice is harmless.
func (k *Keyboard) Subscribe(fn func(Event)) (unsubscribe func()) {
	id := k.nextID
	k.nextID++
	k.subs[id] = fn
	k.order = append(k.order, id)
	return func() {
		if _, ok := k.subs[id]; !ok {
			return
		}
		delete(k.subs, id)
		for i, v := range k.order {
			if v == id {
				k.order = append(k.order[:i], k.order[i+1:]...)
				break
			}
		}
	}
}

// Subscribers is the number of active subscriptions.
func (k *Keyboard) Subscribers() int { return len(k.subs) }

// Press delivers a press of a. Repeats while already held are dropped.
func (k *Keyboard) Press(a Action) {
	if a < 0 || a >= numActions || k.held[a] {
		return
	}
	k.held[a] = true
	k.publish(Event{Action: a, Pressed: true})
}

// Release delivers a release of a.
func (k *Keyboard) Release(a Action) {
	if a < 0 || a >= numActions || !k.held[a] {
		return
	}
	k.held[a] = false
	k.publish(Event{Action: a, Pressed: false})
}

// Held reports whether a is currently pressed.
func (k *Keyboard) Held(a Action) bool {
	return a >= 0 && a < numActions && k.held[a]
}

func (k *Keyboard) publish(ev Event) {
	for _, id := range append([]int(nil), k.order...) {
		if fn, ok := k.subs[id]; ok {
			fn(ev)
		}
	}
}
