package clips

import (
	"sort"
	"sync"
	"time"
)

// Store holds the clips of one project in insertion order.
type Store struct {
	mu     sync.RWMutex
	clips  []Clip
	lastID int64
	now    func() time.Time
}

// NewStore creates an empty clip store
func NewStore() *Store {
	return &Store{
		clips: make([]Clip, 0),
		now:   time.Now,
	}
}

// NextID returns a fresh timestamp based id that no stored clip uses.
func (s *Store) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextID()
}

func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	for s.indexOf(id) >= 0 {
		id++
	}
	s.lastID = id
	return id
}

// Add stores a clip, assigning a fresh id when it has none or a taken one.
func (s *Store) Add(c Clip) Clip {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 || s.indexOf(c.ID) >= 0 {
		c.ID = s.nextID()
	} else if c.ID > s.lastID {
		s.lastID = c.ID
	}
	if c.Start < 0 {
		c.Start = 0
	}
	c.Duration = ClampDuration(c.Duration, c.MaxDuration)
	s.clips = append(s.clips, c)
	return c
}

// Get retrieves a clip by ID
func (s *Store) Get(id int64) (Clip, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.clips[i], true
	}
	return Clip{}, false
}

// All returns a copy of every clip
func (s *Store) All() []Clip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Clip, len(s.clips))
	copy(out, s.clips)
	return out
}

// OnLayer returns the clips of one layer ordered by start time.
func (s *Store) OnLayer(layer int64) []Clip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Clip
	for _, c := range s.clips {
		if c.Layer == layer {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// At returns the clips covering time t, lowest layer id first.
func (s *Store) At(t float64) []Clip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Clip
	for _, c := range s.clips {
		if t >= c.Start && t < c.End() {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Layer < out[j].Layer })
	return out
}

// End returns the latest clip end, or zero for an empty store.
func (s *Store) End() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var end float64
	for _, c := range s.clips {
		if e := c.End(); e > end {
			end = e
		}
	}
	return end
}

// Remove deletes a clip. Isolated clips stay.
func (s *Store) Remove(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 || s.clips[i].Isolated {
		return false
	}
	s.clips = append(s.clips[:i], s.clips[i+1:]...)
	return true
}

// ReplaceIsolated swaps out the isolated clips of a layer for c, which is
// stored isolated and locked. It is how imported media lands on a pinned
// layer; no editing path reaches it.
func (s *Store) ReplaceIsolated(layer int64, c Clip) Clip {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.clips[:0]
	for _, x := range s.clips {
		if x.Layer == layer && x.Isolated {
			continue
		}
		kept = append(kept, x)
	}
	s.clips = kept
	if c.ID == 0 || s.indexOf(c.ID) >= 0 {
		c.ID = s.nextID()
	}
	c.Layer = layer
	c.Isolated = true
	c.Locked = true
	if c.Start < 0 {
		c.Start = 0
	}
	c.Duration = ClampDuration(c.Duration, c.MaxDuration)
	s.clips = append(s.clips, c)
	return c
}

// Apply writes an update into a stored clip. Locked and isolated clips are
// never changed; the result always satisfies the duration bounds.
func (s *Store) Apply(id int64, u Update) (Clip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return Clip{}, false
	}
	c := s.clips[i]
	if c.Locked || c.Isolated || u.Empty() {
		return c, false
	}
	c = u.ApplyTo(c)
	if c.Start < 0 {
		c.Start = 0
	}
	c.Duration = ClampDuration(c.Duration, c.MaxDuration)
	s.clips[i] = c
	return c, true
}

// SetLocked changes a clip's own lock. Isolated clips stay locked.
func (s *Store) SetLocked(id int64, locked bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 || s.clips[i].Isolated {
		return false
	}
	s.clips[i].Locked = locked
	return true
}

// MarkPending flags a placeholder as awaiting generation.
func (s *Store) MarkPending(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 || !s.clips[i].Placeholder {
		return false
	}
	s.clips[i].PendingGeneration = true
	return true
}

// ReplaceWithGenerated attaches generated media to a placeholder and clears
// its placeholder flags.
func (s *Store) ReplaceWithGenerated(id int64, content Content) (Clip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 || content == nil {
		return Clip{}, false
	}
	c := s.clips[i]
	c.Content = content
	c.Placeholder = false
	c.PendingGeneration = false
	s.clips[i] = c
	return c, true
}

func (s *Store) indexOf(id int64) int {
	for i, c := range s.clips {
		if c.ID == id {
			return i
		}
	}
	return -1
}
