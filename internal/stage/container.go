package stage

import "sync"

// Container is the surface elements are mounted into.
type Container interface {
	Mounted() bool
	Append(e *Element)
	Remove(e *Element)
	Children() []*Element
}

// Memory is an in-process container. Hosts that draw frames read Children.
type Memory struct {
	mu       sync.RWMutex
	mounted  bool
	children []*Element
	width    int
	height   int
}

// NewMemory creates a mounted container of the given pixel size.
func NewMemory(width, height int) *Memory {
	return &Memory{mounted: true, width: width, height: height}
}

// Size returns the container dimensions.
func (m *Memory) Size() (int, int) {
	return m.width, m.height
}

func (m *Memory) Mounted() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mounted
}

// SetMounted toggles whether the container accepts a timeline build.
func (m *Memory) SetMounted(v bool) {
	m.mu.Lock()
	m.mounted = v
	m.mu.Unlock()
}

func (m *Memory) Append(e *Element) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.children = append(m.children, e)
}

func (m *Memory) Remove(e *Element) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.children {
		if c == e {
			m.children = append(m.children[:i], m.children[i+1:]...)
			return
		}
	}
}

func (m *Memory) Children() []*Element {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Element, len(m.children))
	copy(out, m.children)
	return out
}

// Visible returns the children with non-zero opacity, bottom first.
func Visible(c Container) []*Element {
	var out []*Element
	for _, e := range c.Children() {
		if e.Prop(PropOpacity) > 0 {
			out = append(out, e)
		}
	}
	return out
}
