package geosource

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// 文档注释：进程内 LRU 响应体缓存
// 背景：预览服务未启用 Redis 时，重复刷新仍可复用已下载的边界数据；条目各自带过期时间。
// 约束：容量按条目数计；过期条目在读取时淘汰。
type LRU struct {
	mu   sync.Mutex
	cap  int
	lst  *list.List
	dict map[string]*list.Element
	now  func() time.Time
}

type lruEntry struct {
	k   string
	v   []byte
	exp time.Time
}

func NewLRU(capacity int) *LRU {
	if capacity <= 0 {
		capacity = 4
	}
	return &LRU{cap: capacity, lst: list.New(), dict: make(map[string]*list.Element), now: time.Now}
}

func (c *LRU) Get(_ context.Context, k string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.dict[k]; ok {
		it := e.Value.(lruEntry)
		if c.now().Before(it.exp) {
			c.lst.MoveToFront(e)
			return it.v, true, nil
		}
		c.lst.Remove(e)
		delete(c.dict, k)
	}
	return nil, false, nil
}

func (c *LRU) Set(_ context.Context, k string, v []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	it := lruEntry{k: k, v: v, exp: c.now().Add(ttl)}
	if e, ok := c.dict[k]; ok {
		e.Value = it
		c.lst.MoveToFront(e)
		return nil
	}
	c.dict[k] = c.lst.PushFront(it)
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		delete(c.dict, back.Value.(lruEntry).k)
		c.lst.Remove(back)
	}
	return nil
}

func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}
