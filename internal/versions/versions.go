// Package versions keeps the branching history of generated and edited
// images. Editing an older version starts a new branch instead of
// discarding later ones.
package versions

import (
	"errors"
	"image"
	"sync"
	"time"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	"github.com/google/uuid"
)

// ThumbEdge is the longest edge of a thumbnail in pixels.
const ThumbEdge = 160

// ErrUnknownVersion is returned for ids that are not in the tree.
var ErrUnknownVersion = errors.New("unknown version")

// Version is one image in the tree. ParentID is uuid.Nil for roots.
type Version struct {
	ID       uuid.UUID
	ParentID uuid.UUID
	Prompt   string
	Image    *image.RGBA
	Thumb    *image.RGBA
	Created  time.Time
}

// Tree is a forest of versions with a current head. It is safe for
// concurrent use.
type Tree struct {
	mu       sync.RWMutex
	byID     map[uuid.UUID]*Version
	order    []uuid.UUID
	children map[uuid.UUID][]uuid.UUID
	head     uuid.UUID
	now      func() time.Time
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{
		byID:     map[uuid.UUID]*Version{},
		children: map[uuid.UUID][]uuid.UUID{},
		now:      time.Now,
	}
}

// Add stores img as a child of parent, or as a new root when parent is
// uuid.Nil, and makes it the head.
func (t *Tree) Add(parent uuid.UUID, img image.Image, prompt string) (*Version, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if parent != uuid.Nil {
		if _, ok := t.byID[parent]; !ok {
			return nil, ErrUnknownVersion
		}
	}
	rgba := clone.AsRGBA(img)
	v := &Version{
		ID:       uuid.New(),
		ParentID: parent,
		Prompt:   prompt,
		Image:    rgba,
		Thumb:    Thumbnail(rgba),
		Created:  t.now().UTC(),
	}
	t.byID[v.ID] = v
	t.order = append(t.order, v.ID)
	t.children[parent] = append(t.children[parent], v.ID)
	t.head = v.ID
	return v, nil
}

// Get returns the version with the given id.
func (t *Tree) Get(id uuid.UUID) (*Version, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.byID[id]
	return v, ok
}

// Len returns the number of versions.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.order)
}

// All returns every version in creation order.
func (t *Tree) All() []*Version {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Version, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.byID[id])
	}
	return out
}

// Roots returns the versions without a parent in creation order.
func (t *Tree) Roots() []*Version { return t.Children(uuid.Nil) }

// Children returns the direct children of id in creation order.
func (t *Tree) Children(id uuid.UUID) []*Version {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := t.children[id]
	out := make([]*Version, 0, len(ids))
	for _, c := range ids {
		out = append(out, t.byID[c])
	}
	return out
}

// Lineage returns the path from the root down to id.
func (t *Tree) Lineage(id uuid.UUID) ([]*Version, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var rev []*Version
	for cur := id; cur != uuid.Nil; {
		v, ok := t.byID[cur]
		if !ok {
			return nil, ErrUnknownVersion
		}
		rev = append(rev, v)
		cur = v.ParentID
	}
	out := make([]*Version, len(rev))
	for i, v := range rev {
		out[len(rev)-1-i] = v
	}
	return out, nil
}

// Head returns the current version, or nil for an empty tree.
func (t *Tree) Head() *Version {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.byID[t.head]
}

// SetHead selects an existing version as current.
func (t *Tree) SetHead(id uuid.UUID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byID[id]; !ok {
		return ErrUnknownVersion
	}
	t.head = id
	return nil
}

// Thumbnail scales img down so its longest edge is ThumbEdge. Smaller
// images are copied unscaled.
func Thumbnail(img image.Image) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= ThumbEdge && h <= ThumbEdge {
		return clone.AsRGBA(img)
	}
	tw, th := ThumbEdge, ThumbEdge
	if w >= h {
		th = max(1, h*ThumbEdge/w)
	} else {
		tw = max(1, w*ThumbEdge/h)
	}
	return transform.Resize(img, tw, th, transform.Linear)
}
