//go:build !production

package testutil

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// expireWait 等待 clockwork 标记到期的上限
const expireWait = 5 * time.Second

// FakeClock 在 clockwork.FakeClock 之上按到期顺序执行 AfterFunc 回调
// clockwork 只负责计时和到期，回调在 Advance 的调用方 goroutine 中依次执行，测试结果可复现
type FakeClock struct {
	*clockwork.FakeClock

	mu      sync.Mutex
	seq     int
	pending map[*fakeTimer]struct{}
}

type fakeTimer struct {
	clock   *FakeClock
	inner   clockwork.Timer
	fn      func()
	at      time.Time
	seq     int
	expired bool
}

// NewFakeClock 创建从 start 开始的虚拟时钟
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{
		FakeClock: clockwork.NewFakeClockAt(start),
		pending:   make(map[*fakeTimer]struct{}),
	}
}

func (c *FakeClock) AfterFunc(d time.Duration, f func()) clockwork.Timer {
	c.mu.Lock()
	c.seq++
	t := &fakeTimer{clock: c, fn: f, at: c.FakeClock.Now().Add(d), seq: c.seq}
	c.pending[t] = struct{}{}
	c.mu.Unlock()

	t.inner = c.FakeClock.AfterFunc(d, t.expire)
	return t
}

// Advance 推进 d，逐个截止时间推进并执行到期回调
// 回调中新建且在窗口内到期的定时器也会触发
func (c *FakeClock) Advance(d time.Duration) {
	target := c.FakeClock.Now().Add(d)
	for {
		next, ok := c.nextDue(target)
		now := c.FakeClock.Now()
		if !ok {
			if target.After(now) {
				c.FakeClock.Advance(target.Sub(now))
			}
			return
		}
		if next.After(now) {
			c.FakeClock.Advance(next.Sub(now))
		}
		for _, t := range c.collect(next) {
			if c.take(t) {
				t.fn()
			}
		}
	}
}

// Pending 尚未执行的定时器数量
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *FakeClock) nextDue(target time.Time) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var next time.Time
	found := false
	for t := range c.pending {
		if t.at.After(target) {
			continue
		}
		if !found || t.at.Before(next) {
			next, found = t.at, true
		}
	}
	return next, found
}

// collect 等待截止时间不晚于 at 的定时器全部到期，按截止时间和创建顺序返回
func (c *FakeClock) collect(at time.Time) []*fakeTimer {
	deadline := time.Now().Add(expireWait)
	for {
		c.mu.Lock()
		var due []*fakeTimer
		waiting := false
		for t := range c.pending {
			if t.at.After(at) {
				continue
			}
			if !t.expired {
				waiting = true
				break
			}
			due = append(due, t)
		}
		if !waiting {
			c.mu.Unlock()
			sort.Slice(due, func(i, j int) bool {
				if due[i].at.Equal(due[j].at) {
					return due[i].seq < due[j].seq
				}
				return due[i].at.Before(due[j].at)
			})
			return due
		}
		c.mu.Unlock()

		if time.Now().After(deadline) {
			panic(fmt.Sprintf("testutil: timers due at %s never expired", at.Format(time.RFC3339Nano)))
		}
		// 截止时间已过但尚未登记的定时器再推一次
		c.FakeClock.Advance(0)
		time.Sleep(time.Millisecond)
	}
}

// take 取出待执行的定时器，已被 Stop 的返回 false
func (c *FakeClock) take(t *fakeTimer) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pending[t]; !ok {
		return false
	}
	delete(c.pending, t)
	return true
}

// expire clockwork 到期回调，只做标记
func (t *fakeTimer) expire() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.expired = true
}

func (t *fakeTimer) Chan() <-chan time.Time {
	return t.inner.Chan()
}

// Stop 回调尚未执行就视为成功取消
func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if _, ok := t.clock.pending[t]; !ok {
		return false
	}
	delete(t.clock.pending, t)
	t.inner.Stop()
	return true
}

func (t *fakeTimer) Reset(d time.Duration) bool {
	t.clock.mu.Lock()
	_, active := t.clock.pending[t]
	t.clock.seq++
	t.at = t.clock.FakeClock.Now().Add(d)
	t.seq = t.clock.seq
	t.expired = false
	t.clock.pending[t] = struct{}{}
	t.clock.mu.Unlock()

	t.inner.Reset(d)
	return active
}
