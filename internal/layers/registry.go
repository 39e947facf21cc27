package layers

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Observer receives the full layer list after every successful mutation.
type Observer func([]Layer)

// Registry owns the ordered layer set. Index 0 is the lowest z position.
type Registry struct {
	mu        sync.RWMutex
	logger    zerolog.Logger
	layers    []Layer
	observers []subscriber
	nextObs   int
	lastID    int64
	now       func() time.Time
}

// New creates a registry seeded with the default layers.
func New(logger zerolog.Logger) *Registry {
	return NewFrom(logger, Defaults())
}

type subscriber struct {
	id int
	fn Observer
}

// NewFrom creates a registry from persisted layers. The audio invariant is
// re-applied to whatever was loaded and the audio layer is moved to the
// bottom.
func NewFrom(logger zerolog.Logger, initial []Layer) *Registry {
	r := &Registry{
		logger: logger.With().Str("component", "layers").Logger(),
		now:    time.Now,
	}
	if len(initial) == 0 {
		initial = Defaults()
	}
	r.layers = make([]Layer, 0, len(initial))
	for _, l := range copyLayers(initial) {
		r.layers = append(r.layers, normalize(l))
	}
	if i := bottomAudio(r.layers); i > 0 {
		audio := r.layers[i]
		copy(r.layers[1:i+1], r.layers[:i])
		r.layers[0] = audio
		r.logger.Debug().Int64("layer", audio.ID).Int("from", i).Msg("audio layer moved to bottom")
	}
	return r
}

// Subscribe registers an observer and returns a function removing it.
func (r *Registry) Subscribe(fn Observer) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextObs
	r.nextObs++
	r.observers = append(r.observers, subscriber{id: id, fn: fn})
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, sub := range r.observers {
			if sub.id == id {
				r.observers = append(r.observers[:i], r.observers[i+1:]...)
				return
			}
		}
	}
}

// Layers returns a snapshot, lowest z first.
func (r *Registry) Layers() []Layer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyLayers(r.layers)
}

// Get returns the layer with the given id.
func (r *Registry) Get(id int64) (Layer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		return copyLayers(r.layers[i : i+1])[0], true
	}
	return Layer{}, false
}

// IsLocked reports whether clips on the layer are frozen. Unknown layers
// count as locked.
func (r *Registry) IsLocked(id int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return true
	}
	return r.layers[i].Locked || r.layers[i].Isolated
}

// PlaceholderHost returns the layer that receives generated placeholders.
func (r *Registry) PlaceholderHost() (Layer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, l := range r.layers {
		if l.PlaceholderHost {
			return l, true
		}
	}
	return Layer{}, false
}

// AddLayer appends a layer above all others and returns its id.
func (r *Registry) AddLayer(kind Kind, name string, metadata map[string]string) int64 {
	r.mu.Lock()
	id := r.freshID()
	if name == "" {
		name = string(kind)
	}
	l := Layer{
		ID:      id,
		Name:    name,
		Kind:    kind,
		Visible: true,
		Height:  DefaultHeight,
	}
	if metadata != nil {
		l.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			l.Metadata[k] = v
		}
	}
	r.layers = append(r.layers, normalize(l))
	r.logger.Debug().Int64("layer", id).Str("kind", string(kind)).Msg("layer added")
	r.unlockAndNotify()
	return id
}

// RemoveLayer deletes a layer. Isolated or unknown layers are left alone.
func (r *Registry) RemoveLayer(id int64) bool {
	r.mu.Lock()
	i := r.indexOf(id)
	if i < 0 || r.layers[i].Isolated {
		r.mu.Unlock()
		r.logger.Debug().Int64("layer", id).Msg("remove rejected")
		return false
	}
	r.layers = append(r.layers[:i], r.layers[i+1:]...)
	r.unlockAndNotify()
	return true
}

// UpdateLayer applies a patch. Attempts to clear isolation or unlock an
// isolated layer are dropped from the patch; the rest still applies.
func (r *Registry) UpdateLayer(id int64, p Patch) bool {
	r.mu.Lock()
	i := r.indexOf(id)
	if i < 0 {
		r.mu.Unlock()
		return false
	}
	l := r.layers[i]
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Visible != nil {
		l.Visible = *p.Visible
	}
	if p.Height != nil && *p.Height > 0 {
		l.Height = *p.Height
	}
	if p.PlaceholderHost != nil {
		l.PlaceholderHost = *p.PlaceholderHost
	}
	if p.Isolated != nil && *p.Isolated {
		l.Isolated = true
	}
	if p.Locked != nil {
		l.Locked = *p.Locked
	}
	if p.Metadata != nil {
		l.Metadata = make(map[string]string, len(p.Metadata))
		for k, v := range p.Metadata {
			l.Metadata[k] = v
		}
	}
	r.layers[i] = normalize(l)
	r.unlockAndNotify()
	return true
}

// ToggleVisibility flips visibility. No-op for isolated layers.
func (r *Registry) ToggleVisibility(id int64) bool {
	return r.toggle(id, func(l *Layer) { l.Visible = !l.Visible })
}

// ToggleLock flips the lock. No-op for isolated layers.
func (r *Registry) ToggleLock(id int64) bool {
	return r.toggle(id, func(l *Layer) { l.Locked = !l.Locked })
}

func (r *Registry) toggle(id int64, fn func(*Layer)) bool {
	r.mu.Lock()
	i := r.indexOf(id)
	if i < 0 || r.layers[i].Isolated {
		r.mu.Unlock()
		r.logger.Debug().Int64("layer", id).Msg("toggle rejected")
		return false
	}
	fn(&r.layers[i])
	r.unlockAndNotify()
	return true
}

// MoveUp raises a layer one z position.
func (r *Registry) MoveUp(id int64) bool {
	r.mu.Lock()
	i := r.indexOf(id)
	if i < 0 || i == len(r.layers)-1 || r.pinned(i) {
		r.mu.Unlock()
		return false
	}
	r.layers[i], r.layers[i+1] = r.layers[i+1], r.layers[i]
	r.unlockAndNotify()
	return true
}

// MoveDown lowers a layer one z position. Nothing may displace the audio
// layer from the bottom.
func (r *Registry) MoveDown(id int64) bool {
	r.mu.Lock()
	i := r.indexOf(id)
	if i <= 0 || r.pinned(i-1) {
		r.mu.Unlock()
		return false
	}
	r.layers[i], r.layers[i-1] = r.layers[i-1], r.layers[i]
	r.unlockAndNotify()
	return true
}

// Reset restores the default four layers.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.layers = Defaults()
	r.unlockAndNotify()
}

// pinned reports whether the layer at index i is the bottom audio layer.
func (r *Registry) pinned(i int) bool {
	return i == bottomAudio(r.layers)
}

// bottomAudio finds the layer that must stay lowest: the layer with
// AudioLayerID, else the first audio layer. It returns -1 when there is none.
func bottomAudio(ls []Layer) int {
	first := -1
	for i, l := range ls {
		if l.ID == AudioLayerID {
			return i
		}
		if first < 0 && l.Kind == KindAudio {
			first = i
		}
	}
	return first
}

func (r *Registry) indexOf(id int64) int {
	for i, l := range r.layers {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// freshID derives a millisecond timestamp id, bumped past any id in use.
func (r *Registry) freshID() int64 {
	id := r.now().UnixMilli()
	if id <= r.lastID {
		id = r.lastID + 1
	}
	for r.indexOf(id) >= 0 {
		id++
	}
	r.lastID = id
	return id
}

// unlockAndNotify releases the write lock and fans out a snapshot.
func (r *Registry) unlockAndNotify() {
	snapshot := copyLayers(r.layers)
	observers := make([]Observer, 0, len(r.observers))
	for _, sub := range r.observers {
		observers = append(observers, sub.fn)
	}
	r.mu.Unlock()

	for _, fn := range observers {
		fn(snapshot)
	}
}
