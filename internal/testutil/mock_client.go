//go:build !production

package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/cheese-thief/internal/protocol"
	"github.com/palemoky/cheese-thief/internal/protocol/codec"
)

// MockClient 实现 types.ClientInterface 的 mock
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetRoom() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) SetRoom(roomCode string) {
	m.Called(roomCode)
}

func (m *MockClient) GetPlayerID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) SetPlayerID(id string) {
	m.Called(id)
}

func (m *MockClient) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockClient) Close() {
	m.Called()
}

// SimpleClient 记录收到消息的客户端，不使用 testify（用于不需要断言调用的测试）
type SimpleClient struct {
	ID       string
	RoomCode string
	PlayerID string
	Closed   bool

	mu       sync.Mutex
	messages []*protocol.Message
}

// NewSimpleClient 创建客户端
func NewSimpleClient(id string) *SimpleClient {
	return &SimpleClient{ID: id}
}

func (m *SimpleClient) GetID() string { return m.ID }

func (m *SimpleClient) GetRoom() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RoomCode
}

func (m *SimpleClient) SetRoom(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RoomCode = code
}

func (m *SimpleClient) GetPlayerID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PlayerID
}

func (m *SimpleClient) SetPlayerID(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlayerID = id
}

func (m *SimpleClient) SendMessage(msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

func (m *SimpleClient) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
}

// Messages 返回收到的所有消息
func (m *SimpleClient) Messages() []*protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*protocol.Message(nil), m.messages...)
}

// Reset 清空已收到的消息
func (m *SimpleClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}

// OfType 返回指定类型的消息
func (m *SimpleClient) OfType(t protocol.MessageType) []*protocol.Message {
	var out []*protocol.Message
	for _, msg := range m.Messages() {
		if msg.Type == t {
			out = append(out, msg)
		}
	}
	return out
}

// Last 返回最后一条指定类型的消息
func (m *SimpleClient) Last(t protocol.MessageType) *protocol.Message {
	msgs := m.OfType(t)
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

// LastState 解析最后一次收到的游戏状态
func (m *SimpleClient) LastState() *protocol.ClientGameState {
	msg := m.Last(protocol.MsgGameState)
	if msg == nil {
		return nil
	}
	state, err := codec.ParsePayload[protocol.ClientGameState](msg)
	if err != nil {
		return nil
	}
	return state
}

// LastError 解析最后一条错误消息
func (m *SimpleClient) LastError() *protocol.ErrorPayload {
	msg := m.Last(protocol.MsgError)
	if msg == nil {
		return nil
	}
	payload, err := codec.ParsePayload[protocol.ErrorPayload](msg)
	if err != nil {
		return nil
	}
	return payload
}
