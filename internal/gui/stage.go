package gui

import (
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/storage"

	"github.com/kikiluvv/framecannon/internal/stage"
)

// Stage is a stage.Container drawn with fyne canvas images. Append and
// Remove touch the canvas and must run on the fyne goroutine, as must Sync.
type Stage struct {
	mu       sync.Mutex
	root     *fyne.Container
	mounted  bool
	size     fyne.Size
	children []*stage.Element
	images   map[*stage.Element]*canvas.Image
}

// NewStage creates a mounted stage of the given size.
func NewStage(size fyne.Size) *Stage {
	bg := canvas.NewRectangle(backgroundColor)
	bg.Resize(size)
	root := container.NewWithoutLayout(bg)
	root.Resize(size)
	return &Stage{
		root:    root,
		mounted: true,
		size:    size,
		images:  make(map[*stage.Element]*canvas.Image),
	}
}

// Object is the canvas object to place in a window.
func (s *Stage) Object() fyne.CanvasObject { return s.root }

func (s *Stage) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted
}

// SetMounted toggles whether the stage accepts a build.
func (s *Stage) SetMounted(v bool) {
	s.mu.Lock()
	s.mounted = v
	s.mu.Unlock()
}

func (s *Stage) Append(e *stage.Element) {
	img := loadImage(e.Src)
	img.FillMode = canvas.ImageFillContain
	img.Hide()

	s.mu.Lock()
	s.children = append(s.children, e)
	s.images[e] = img
	s.mu.Unlock()
	s.root.Add(img)
}

func (s *Stage) Remove(e *stage.Element) {
	s.mu.Lock()
	img := s.images[e]
	delete(s.images, e)
	for i, c := range s.children {
		if c == e {
			s.children = append(s.children[:i], s.children[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	if img != nil {
		s.root.Remove(img)
	}
}

func (s *Stage) Children() []*stage.Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*stage.Element, len(s.children))
	copy(out, s.children)
	return out
}

// Image returns the canvas image backing an element.
func (s *Stage) Image(e *stage.Element) (*canvas.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, ok := s.images[e]
	return img, ok
}

// Resize changes the drawing area.
func (s *Stage) Resize(size fyne.Size) {
	s.mu.Lock()
	s.size = size
	s.mu.Unlock()
	s.root.Resize(size)
	if len(s.root.Objects) > 0 {
		s.root.Objects[0].Resize(size)
	}
	s.Sync()
}

// Sync copies every element's animated state onto its image.
func (s *Stage) Sync() {
	s.mu.Lock()
	area := s.size
	type pair struct {
		st  stage.State
		img *canvas.Image
	}
	pairs := make([]pair, 0, len(s.children))
	for _, e := range s.children {
		pairs = append(pairs, pair{e.State(), s.images[e]})
	}
	s.mu.Unlock()

	for _, p := range pairs {
		if p.st.Opacity <= 0 {
			p.img.Hide()
			continue
		}
		pos, size := Place(p.st, area)
		p.img.Move(pos)
		p.img.Resize(size)
		p.img.Translucency = 1 - min(p.st.Opacity, 1)
		p.img.Show()
		p.img.Refresh()
	}
}

// Place maps an element state onto a drawing area. Offsets are percentages
// of the area; scaling is about the centre.
func Place(st stage.State, area fyne.Size) (fyne.Position, fyne.Size) {
	scale := float32(st.EffectiveScale())
	w, h := area.Width*scale, area.Height*scale
	x := (area.Width-w)/2 + area.Width*float32(st.EffectiveX()/100)
	y := (area.Height-h)/2 + area.Height*float32(st.Y/100)
	return fyne.NewPos(x, y), fyne.NewSize(w, h)
}

func loadImage(src string) *canvas.Image {
	if strings.Contains(src, "://") {
		if uri, err := storage.ParseURI(src); err == nil {
			return canvas.NewImageFromURI(uri)
		}
	}
	return canvas.NewImageFromFile(src)
}
