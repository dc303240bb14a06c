package codec

import (
	"bytes"
	"sync"
)

// 超过该容量的缓冲区不放回池中，避免偶发的大状态包长期占用内存
const maxPooledBufferCap = 64 << 10

var encodeBuffers = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 1024))
	},
}

// GetBuffer 从池中取出一个空缓冲区
func GetBuffer() *bytes.Buffer {
	return encodeBuffers.Get().(*bytes.Buffer)
}

// PutBuffer 重置后放回池中
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooledBufferCap {
		return
	}
	buf.Reset()
	encodeBuffers.Put(buf)
}
