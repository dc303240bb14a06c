package room

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// ownedTimer 房间持有的定时器
// 每次 arm 都会取消上一次的定时，回调在房间锁内执行，且只有最新一次 arm 的回调会生效
type ownedTimer struct {
	gen    uint64
	handle clockwork.Timer
}

func (t *ownedTimer) arm(r *Room, d time.Duration, fn func()) {
	t.cancel()
	gen := t.gen
	t.handle = r.clock.AfterFunc(d, func() {
		r.lock()
		defer r.unlock()

		if t.gen != gen || r.closed {
			return
		}
		t.handle = nil
		t.gen++
		fn()
	})
}

func (t *ownedTimer) cancel() {
	if t.handle != nil {
		t.handle.Stop()
		t.handle = nil
	}
	t.gen++
}

func (t *ownedTimer) armed() bool {
	return t.handle != nil
}
