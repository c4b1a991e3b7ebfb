package collection

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x), uint8(y), 99, 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func newStore(t *testing.T, n int) (*Store, []Key) {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for i := range n {
		paths = append(paths, writePNG(t, dir, string(rune('a'+i))+".png", 40+i, 20))
	}
	s := New(image.Pt(16, 16))
	res := s.Add(context.Background(), paths)
	require.Len(t, res.Added, n)
	return s, res.Added
}

func TestStoreAdd(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", 250, 100)
	b := writePNG(t, dir, "b.png", 10, 10)
	broken := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(broken, []byte("nope"), 0o644))

	s := New(image.Point{})
	assert.Equal(t, DefaultThumbnailSize, s.ThumbnailSize())

	t.Run("empty input", func(t *testing.T) {
		res := s.Add(ctx, nil)
		assert.Empty(t, cmp.Diff(AddResult{}, res))
		_, ok := s.Current()
		assert.False(t, ok)
	})

	t.Run("duplicates and failures", func(t *testing.T) {
		res := s.Add(ctx, []string{a, filepath.Join(dir, ".", "a.png"), broken, b, filepath.Join(dir, "missing.png")})
		assert.Empty(t, cmp.Diff([]Key{NewKey(a), NewKey(b)}, res.Added))
		assert.Empty(t, cmp.Diff([]Key{NewKey(a)}, res.Duplicates))
		require.Len(t, res.Failed, 2)
		assert.Equal(t, NewKey(broken), res.Failed[0].Key)
		assert.ErrorIs(t, res.Failed[0], ErrUnreadableSource)
		assert.ErrorIs(t, res.Failed[1].Err, ErrUnreadableSource)
		assert.Equal(t, 2, s.Len())

		cur, ok := s.Current()
		assert.True(t, ok)
		assert.Equal(t, NewKey(a), cur)
	})

	t.Run("same path again", func(t *testing.T) {
		res := s.Add(ctx, []string{a})
		assert.Empty(t, res.Added)
		assert.Equal(t, []Key{NewKey(a)}, res.Duplicates)
		assert.Equal(t, 2, s.Len())
	})

	t.Run("thumbnails", func(t *testing.T) {
		e, ok := s.Get(NewKey(a))
		require.True(t, ok)
		assert.Equal(t, image.Pt(125, 50), e.Thumbnail.Rect.Size())
		e, _ = s.Get(NewKey(b))
		assert.Equal(t, image.Pt(10, 10), e.Thumbnail.Rect.Size())
	})

	t.Run("cancelled", func(t *testing.T) {
		c, cancel := context.WithCancel(ctx)
		cancel()
		res := New(image.Point{}).Add(c, []string{a})
		require.Len(t, res.Failed, 1)
		assert.ErrorIs(t, res.Failed[0], context.Canceled)
		assert.NotErrorIs(t, res.Failed[0], ErrUnreadableSource)
	})

	t.Run("deadline", func(t *testing.T) {
		c, cancel := context.WithDeadline(ctx, time.Now().Add(-time.Second))
		defer cancel()
		res := New(image.Point{}).Add(c, []string{a, b})
		require.Len(t, res.Failed, 2)
		for _, f := range res.Failed {
			assert.ErrorIs(t, f, context.DeadlineExceeded)
			assert.NotErrorIs(t, f, ErrUnreadableSource)
		}
	})
}

func TestStoreRemove(t *testing.T) {
	t.Run("middle selects next", func(t *testing.T) {
		s, keys := newStore(t, 3)
		_, err := s.Select(keys[1])
		require.NoError(t, err)
		require.NoError(t, s.Remove(keys[1]))
		cur, _ := s.Current()
		assert.Equal(t, keys[2], cur)
		assert.Equal(t, []Key{keys[0], keys[2]}, s.Keys())
	})

	t.Run("last selects previous", func(t *testing.T) {
		s, keys := newStore(t, 3)
		_, err := s.Select(keys[2])
		require.NoError(t, err)
		require.NoError(t, s.Remove(keys[2]))
		cur, _ := s.Current()
		assert.Equal(t, keys[1], cur)
	})

	t.Run("only entry clears selection", func(t *testing.T) {
		s, keys := newStore(t, 1)
		require.NoError(t, s.Remove(keys[0]))
		_, ok := s.Current()
		assert.False(t, ok)
		assert.Zero(t, s.Len())
	})

	t.Run("other entry keeps selection", func(t *testing.T) {
		s, keys := newStore(t, 3)
		require.NoError(t, s.Remove(keys[2]))
		cur, _ := s.Current()
		assert.Equal(t, keys[0], cur)
	})

	t.Run("unknown", func(t *testing.T) {
		s, _ := newStore(t, 1)
		assert.ErrorIs(t, s.Remove("nope"), ErrUnknownKey)
		_, err := s.Select("nope")
		assert.ErrorIs(t, err, ErrUnknownKey)
		_, err = s.Rotate("nope")
		assert.ErrorIs(t, err, ErrUnknownKey)
	})

	t.Run("clear", func(t *testing.T) {
		s, keys := newStore(t, 3)
		s.Clear()
		assert.Zero(t, s.Len())
		_, ok := s.Current()
		assert.False(t, ok)
		_, ok = s.Get(keys[0])
		assert.False(t, ok)
	})
}

func TestStoreRotate(t *testing.T) {
	s, keys := newStore(t, 1)
	e, _ := s.Get(keys[0])
	original := e.Thumbnail
	size := original.Rect.Size()

	want := []Rotation{90, 180, 270, 0}
	for i, w := range want {
		r, err := s.Rotate(keys[0])
		require.NoError(t, err)
		assert.Equal(t, w, r)
		if i%2 == 0 {
			assert.Equal(t, image.Pt(size.Y, size.X), e.Thumbnail.Rect.Size())
		} else {
			assert.Equal(t, size, e.Thumbnail.Rect.Size())
		}
	}
	assert.Equal(t, original.Pix, e.Thumbnail.Pix)
}

func TestStoreAll(t *testing.T) {
	s, keys := newStore(t, 4)
	var got []Key
	for k, e := range s.All() {
		assert.Equal(t, k, e.Key)
		got = append(got, k)
	}
	assert.Equal(t, keys, got)

	// restartable and stoppable
	got = got[:0]
	for k := range s.All() {
		got = append(got, k)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, keys[:2], got)
}

func TestRotationNext(t *testing.T) {
	r := Rotation(0)
	for _, want := range []Rotation{90, 180, 270, 0, 90} {
		r = r.Next()
		assert.Equal(t, want, r)
	}
}
