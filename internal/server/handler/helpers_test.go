package handler

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/palemoky/cheese-thief/internal/config"
	"github.com/palemoky/cheese-thief/internal/game/room"
	"github.com/palemoky/cheese-thief/internal/protocol"
	"github.com/palemoky/cheese-thief/internal/protocol/codec"
	"github.com/palemoky/cheese-thief/internal/testutil"
)

var epoch = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

type fixture struct {
	h     *Handler
	rm    *room.RoomManager
	clock *testutil.FakeClock
	voice *testutil.RecordingVoice
}

func newFixture(deps HandlerDeps) *fixture {
	f := &fixture{
		clock: testutil.NewFakeClock(epoch),
		voice: &testutil.RecordingVoice{},
	}
	f.rm = room.NewRoomManager(room.Options{
		Timing: config.Default().Game,
		Clock:  f.clock,
		Voice:  f.voice,
	})
	deps.RoomManager = f.rm
	f.h = NewHandler(deps)
	return f
}

func (f *fixture) send(t *testing.T, c *testutil.SimpleClient, msgType protocol.MessageType, payload any) {
	t.Helper()
	msg, err := codec.NewMessage(msgType, payload)
	require.NoError(t, err)
	f.h.Handle(c, msg)
}

// create 新客户端创建房间，返回客户端和加入凭据
func (f *fixture) create(t *testing.T, name string) (*testutil.SimpleClient, *protocol.RoomJoinedPayload) {
	t.Helper()
	c := testutil.NewSimpleClient("conn-" + name)
	f.send(t, c, protocol.MsgCreateRoom, protocol.CreateRoomPayload{Name: name})
	return c, joinedPayload(t, c)
}

func (f *fixture) join(t *testing.T, code, name string) (*testutil.SimpleClient, *protocol.RoomJoinedPayload) {
	t.Helper()
	c := testutil.NewSimpleClient("conn-" + name)
	f.send(t, c, protocol.MsgJoinRoom, protocol.JoinRoomPayload{RoomCode: code, Name: name})
	return c, joinedPayload(t, c)
}

func joinedPayload(t *testing.T, c *testutil.SimpleClient) *protocol.RoomJoinedPayload {
	t.Helper()
	msg := c.Last(protocol.MsgRoomJoined)
	require.NotNil(t, msg, "no room_joined message")
	payload, err := codec.ParsePayload[protocol.RoomJoinedPayload](msg)
	require.NoError(t, err)
	return payload
}

func rawMessage(msgType protocol.MessageType, payload string) *protocol.Message {
	return &protocol.Message{Type: msgType, Payload: json.RawMessage(payload)}
}

func lower(s string) string { return strings.ToLower(s) }
