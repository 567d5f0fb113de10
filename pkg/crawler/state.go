/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package crawler

// item is a queued URI with the context of the link that led to it.
type item struct {
	uri          string
	parent       string
	expectedType string
	inAnnotation bool
	// fromCapabilities targets were linked from @Redfish.CollectionCapabilities.
	fromCapabilities bool
	// originOfCondition fetch failures are logged, not recorded.
	originOfCondition bool
}

// State is the traversal state of one crawl.
type State struct {
	visited  map[string]bool
	queue    []item
	deferred []item
}

func newState() *State {
	return &State{visited: make(map[string]bool)}
}

// push enqueues it unless its URI was already visited or queued.
func (s *State) push(it item) bool {
	if s.visited[it.uri] {
		return false
	}
	s.visited[it.uri] = true
	s.queue = append(s.queue, it)
	return true
}

// deferLink keeps it until the direct frontier is exhausted.
func (s *State) deferLink(it item) {
	if s.visited[it.uri] {
		return
	}
	s.deferred = append(s.deferred, it)
}

// takeWave removes and returns the current queue.
func (s *State) takeWave() []item {
	wave := s.queue
	s.queue = nil
	return wave
}

// promote moves deferred links that are still unvisited onto the queue
// and reports whether any were moved.
func (s *State) promote() bool {
	deferred := s.deferred
	s.deferred = nil
	moved := false
	for _, it := range deferred {
		if s.push(it) {
			moved = true
		}
	}
	return moved
}

// Visited reports whether uri was queued during the crawl.
func (s *State) Visited(uri string) bool {
	return s.visited[Canonical(uri)]
}

// Len returns the number of visited URIs.
func (s *State) Len() int {
	return len(s.visited)
}
