package voice

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type op int

const (
	opMute op = iota
	opUnmute
	opSubset
	opDelete
)

var opNames = map[op]string{
	opMute:   "mute_all",
	opUnmute: "unmute_all",
	opSubset: "unmute_subset",
	opDelete: "delete_room",
}

type job struct {
	op      op
	room    string
	allowed []string
}

// Dispatcher 在后台按顺序执行语音操作，调用方不会被网络请求阻塞
// 队列满时丢弃新操作，失败只记录日志
type Dispatcher struct {
	ctrl    Controller
	timeout time.Duration
	jobs    chan job
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher 创建并启动调度器
func NewDispatcher(ctrl Controller, queueSize int, timeout time.Duration) *Dispatcher {
	d := &Dispatcher{
		ctrl:    ctrl,
		timeout: timeout,
		jobs:    make(chan job, queueSize),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for j := range d.jobs {
		d.exec(j)
	}
}

func (d *Dispatcher) exec(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	var err error
	switch j.op {
	case opMute:
		err = d.ctrl.MuteAll(ctx, j.room)
	case opUnmute:
		err = d.ctrl.UnmuteAll(ctx, j.room)
	case opSubset:
		err = d.ctrl.UnmuteSubset(ctx, j.room, j.allowed)
	case opDelete:
		err = d.ctrl.DeleteRoom(ctx, j.room)
	}
	if err != nil {
		log.Warn().Err(err).Str("room", j.room).Str("op", opNames[j.op]).Msg("⚠️ 语音操作失败")
		return
	}
	log.Debug().Str("room", j.room).Str("op", opNames[j.op]).Int("allowed", len(j.allowed)).Msg("🎙️ 语音操作完成")
}

func (d *Dispatcher) enqueue(j job) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return
	}
	select {
	case d.jobs <- j:
	default:
		log.Warn().Str("room", j.room).Str("op", opNames[j.op]).Msg("⚠️ 语音队列已满，丢弃操作")
	}
}

func (d *Dispatcher) MuteAll(room string)    { d.enqueue(job{op: opMute, room: room}) }
func (d *Dispatcher) UnmuteAll(room string)  { d.enqueue(job{op: opUnmute, room: room}) }
func (d *Dispatcher) DeleteRoom(room string) { d.enqueue(job{op: opDelete, room: room}) }

func (d *Dispatcher) UnmuteSubset(room string, allowed []string) {
	d.enqueue(job{op: opSubset, room: room, allowed: append([]string(nil), allowed...)})
}

// Close 停止接收新操作，等待队列中的操作执行完
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()
	<-d.done
}
