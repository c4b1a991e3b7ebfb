// Package cache keeps decoded source images so repeated previews and
// exports do not decode the same file twice.
package cache

import (
	"image"
	"sync"

	"github.com/yyyoichi/watermark_batch/internal/raster"
)

type Cache struct {
	data sync.Map
	open func(string) (image.Image, error)
}

func New() *Cache {
	return &Cache{open: raster.Open}
}

// Open returns the decoded image at path, decoding it on first use.
// Failures are not cached.
func (c *Cache) Open(path string) (image.Image, error) {
	if v, ok := c.data.Load(path); ok {
		return v.(image.Image), nil
	}
	img, err := c.open(path)
	if err != nil {
		return nil, err
	}
	actual, loaded := c.data.LoadOrStore(path, img)
	if loaded {
		return actual.(image.Image), nil
	}
	return img, nil
}

func (c *Cache) Delete(path string) {
	c.data.Delete(path)
}

func (c *Cache) Clear() {
	c.data.Clear()
}

func (c *Cache) Len() int {
	n := 0
	c.data.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}
