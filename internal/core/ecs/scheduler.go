package ecs

import "fmt"

// slot is one registered system with its materialized queries.
type slot struct {
	sys     Runnable
	queries map[string]*Query
}

// scheduler executes systems strictly in registration order.
type scheduler struct {
	slots     []slot
	teardowns []Teardown
}

func newScheduler() *scheduler {
	return &scheduler{
		slots: make([]slot, 0, 16),
	}
}

func (s *scheduler) add(sl slot, td Teardown) {
	s.slots = append(s.slots, sl)
	if td != nil {
		s.teardowns = append(s.teardowns, td)
	}
}

func (s *scheduler) tick(ctx *Context) error {
	for _, sl := range s.slots {
		ctx.queries = sl.queries
		if err := sl.sys.run(ctx); err != nil {
			return fmt.Errorf("system %s: %w", sl.sys.Name(), err)
		}
	}
	return nil
}

// shutdown runs teardowns last-registered first, then forgets them.
func (s *scheduler) shutdown() {
	for i := len(s.teardowns) - 1; i >= 0; i-- {
		s.teardowns[i]()
	}
	s.teardowns = nil
}

func (s *scheduler) names() []string {
	out := make([]string, len(s.slots))
	for i, sl := range s.slots {
		out[i] = sl.sys.Name()
	}
	return out
}
