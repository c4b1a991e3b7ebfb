// Package collection keeps the ordered set of images to be watermarked.
package collection

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"image"
	"iter"

	"github.com/yyyoichi/watermark_batch/internal/raster"
)

var (
	ErrUnknownKey       = errors.New("unknown image")
	ErrUnreadableSource = errors.New("unreadable source image")
)

// DefaultThumbnailSize is the box thumbnails are fitted into.
var DefaultThumbnailSize = image.Pt(125, 125)

// AddResult reports the outcome of an Add call per path.
type AddResult struct {
	Added      []Key
	Duplicates []Key
	Failed     []ItemError
}

// Store is an insertion-ordered set of entries with a selection cursor.
// The selection is nil only when the store is empty. Store is not safe for
// concurrent use.
type Store struct {
	order   *list.List
	index   map[Key]*list.Element
	current *list.Element
	thumb   image.Point
}

func New(thumbnail image.Point) *Store {
	if thumbnail.X <= 0 || thumbnail.Y <= 0 {
		thumbnail = DefaultThumbnailSize
	}
	return &Store{
		order: list.New(),
		index: make(map[Key]*list.Element),
		thumb: thumbnail,
	}
}

// ThumbnailSize returns the box thumbnails are fitted into.
func (s *Store) ThumbnailSize() image.Point { return s.thumb }

// Add opens every new path, builds its thumbnail and appends it.
func (s *Store) Add(ctx context.Context, paths []string) AddResult {
	fresh, res := s.Plan(paths)
	loaded := Load(ctx, fresh, s.thumb)
	s.Insert(loaded, &res)
	return res
}

// Plan splits paths into keys that still need loading and duplicates of
// stored keys or of earlier paths in the same call.
func (s *Store) Plan(paths []string) ([]Key, AddResult) {
	var res AddResult
	var fresh []Key
	seen := make(map[Key]bool, len(paths))
	for _, p := range paths {
		key := NewKey(p)
		if _, ok := s.index[key]; ok || seen[key] {
			res.Duplicates = append(res.Duplicates, key)
			continue
		}
		seen[key] = true
		fresh = append(fresh, key)
	}
	return fresh, res
}

// Loaded is a decoded thumbnail waiting to be inserted.
type Loaded struct {
	Key       Key
	Thumbnail *image.NRGBA
	Err       error
}

// Load decodes the images of keys in order and shrinks them into
// thumbnails of size box. It touches no store and may run on a worker.
func Load(ctx context.Context, keys []Key, box image.Point) []Loaded {
	loaded := make([]Loaded, 0, len(keys))
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			loaded = append(loaded, Loaded{Key: key, Err: err})
			continue
		}
		img, err := raster.Open(key.Path())
		if err != nil {
			loaded = append(loaded, Loaded{Key: key, Err: err})
			continue
		}
		loaded = append(loaded, Loaded{Key: key, Thumbnail: raster.Thumbnail(img, box.X, box.Y)})
	}
	return loaded
}

// Insert appends loaded entries in order and records failures in res.
// Decode failures are ErrUnreadableSource; context errors are kept as is.
// The first entry becomes the selection when the store was empty.
func (s *Store) Insert(loaded []Loaded, res *AddResult) {
	for _, l := range loaded {
		if l.Err != nil {
			err := l.Err
			if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				err = fmt.Errorf("%w: %w", ErrUnreadableSource, err)
			}
			res.Failed = append(res.Failed, ItemError{Key: l.Key, Err: err})
			continue
		}
		if _, ok := s.index[l.Key]; ok {
			res.Duplicates = append(res.Duplicates, l.Key)
			continue
		}
		s.index[l.Key] = s.order.PushBack(newEntry(l.Key, l.Thumbnail))
		res.Added = append(res.Added, l.Key)
	}
	if s.current == nil {
		s.current = s.order.Front()
	}
}

// Remove deletes key. When key is selected the selection moves to the
// next entry, else to the previous one, else to none.
func (s *Store) Remove(key Key) error {
	el, ok := s.index[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if s.current == el {
		if next := el.Next(); next != nil {
			s.current = next
		} else {
			s.current = el.Prev()
		}
	}
	s.order.Remove(el)
	delete(s.index, key)
	return nil
}

// Clear removes every entry and the selection.
func (s *Store) Clear() {
	s.order.Init()
	clear(s.index)
	s.current = nil
}

// Rotate turns key by another 90 degrees and refreshes its thumbnail.
func (s *Store) Rotate(key Key) (Rotation, error) {
	el, ok := s.index[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	e := el.Value.(*Entry)
	e.rotate()
	return e.Rotation, nil
}

// Select makes key the current selection.
func (s *Store) Select(key Key) (Key, error) {
	el, ok := s.index[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	s.current = el
	return key, nil
}

// Current returns the selected key, or false when the store is empty.
func (s *Store) Current() (Key, bool) {
	if s.current == nil {
		return "", false
	}
	return s.current.Value.(*Entry).Key, true
}

func (s *Store) Get(key Key) (*Entry, bool) {
	el, ok := s.index[key]
	if !ok {
		return nil, false
	}
	return el.Value.(*Entry), true
}

func (s *Store) Len() int { return s.order.Len() }

// All yields the entries in insertion order. Each call starts over.
func (s *Store) All() iter.Seq2[Key, *Entry] {
	return func(yield func(Key, *Entry) bool) {
		for el := s.order.Front(); el != nil; el = el.Next() {
			e := el.Value.(*Entry)
			if !yield(e.Key, e) {
				return
			}
		}
	}
}

// Keys returns the keys in insertion order.
func (s *Store) Keys() []Key {
	keys := make([]Key, 0, s.order.Len())
	for k := range s.All() {
		keys = append(keys, k)
	}
	return keys
}
