package imagegen

import lru "github.com/hashicorp/golang-lru/v2"

// renderCache memoizes frames by render parameters. A nil cache is valid and
// caches nothing.
type renderCache struct {
	frames *lru.Cache[SnapParams, Frame]
}

func newRenderCache(size int) (*renderCache, error) {
	if size == 0 {
		return nil, nil
	}
	frames, err := lru.New[SnapParams, Frame](size)
	if err != nil {
		return nil, err
	}
	return &renderCache{frames: frames}, nil
}

// get returns a copy so callers cannot corrupt cached frames.
func (c *renderCache) get(key SnapParams) (Frame, bool) {
	if c == nil {
		return Frame{}, false
	}
	f, ok := c.frames.Get(key)
	if !ok {
		return Frame{}, false
	}
	return f.Clone(), true
}

func (c *renderCache) add(key SnapParams, f Frame) {
	if c == nil {
		return
	}
	c.frames.Add(key, f)
}

func (c *renderCache) purge() {
	if c == nil {
		return
	}
	c.frames.Purge()
}

func (c *renderCache) len() int {
	if c == nil {
		return 0
	}
	return c.frames.Len()
}
