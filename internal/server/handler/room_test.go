package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/cheese-thief/internal/config"
	"github.com/palemoky/cheese-thief/internal/protocol"
	"github.com/palemoky/cheese-thief/internal/testutil"
)

func TestHandler_CreateRoom(t *testing.T) {
	t.Parallel()

	f := newFixture(HandlerDeps{})
	c, joined := f.create(t, "  Alice  ")

	assert.Len(t, joined.RoomCode, 4)
	assert.NotEmpty(t, joined.PlayerID)
	assert.Len(t, joined.SessionToken, 64)
	assert.Equal(t, joined.RoomCode, c.GetRoom())
	assert.Equal(t, joined.PlayerID, c.GetPlayerID())

	state := c.LastState()
	require.NotNil(t, state)
	require.Len(t, state.Players, 1)
	assert.Equal(t, "Alice", state.Players[0].Name)
	assert.True(t, state.Players[0].IsHost)
}

func TestHandler_CreateRoom_InvalidNameDropsRoom(t *testing.T) {
	t.Parallel()

	f := newFixture(HandlerDeps{})
	c := testutil.NewSimpleClient("c1")

	f.send(t, c, protocol.MsgCreateRoom, protocol.CreateRoomPayload{Name: "   "})

	require.NotNil(t, c.LastError())
	assert.Equal(t, protocol.ErrCodeInvalidName, c.LastError().Code)
	assert.Equal(t, 0, f.rm.Count())
	assert.Empty(t, c.GetRoom())
}

func TestHandler_Maintenance(t *testing.T) {
	t.Parallel()

	// 1. Setup
	mockServer := new(testutil.MockServer)
	mockServer.On("IsMaintenanceMode").Return(true)
	f := newFixture(HandlerDeps{Server: mockServer})
	c := testutil.NewSimpleClient("c1")

	// 2. Execution
	f.send(t, c, protocol.MsgCreateRoom, protocol.CreateRoomPayload{Name: "Alice"})
	createErr := c.LastError()
	f.send(t, c, protocol.MsgJoinRoom, protocol.JoinRoomPayload{RoomCode: "ABCD", Name: "Alice"})
	joinErr := c.LastError()

	// 3. Verification
	require.NotNil(t, createErr)
	require.NotNil(t, joinErr)
	assert.Equal(t, protocol.ErrCodeMaintenance, createErr.Code)
	assert.Equal(t, protocol.ErrCodeMaintenance, joinErr.Code)
	assert.Equal(t, 0, f.rm.Count())
	mockServer.AssertExpectations(t)
}

func TestHandler_JoinRoom(t *testing.T) {
	t.Parallel()

	f := newFixture(HandlerDeps{})
	host, created := f.create(t, "Alice")

	guest, joined := f.join(t, created.RoomCode, "Bob")

	assert.Equal(t, created.RoomCode, joined.RoomCode)
	assert.NotEqual(t, created.PlayerID, joined.PlayerID)
	assert.Equal(t, created.RoomCode, guest.GetRoom())
	assert.Len(t, host.LastState().Players, 2)
	assert.False(t, guest.LastState().Players[1].IsHost)
}

func TestHandler_JoinRoom_CaseInsensitive(t *testing.T) {
	t.Parallel()

	f := newFixture(HandlerDeps{})
	_, created := f.create(t, "Alice")

	_, joined := f.join(t, " "+lower(created.RoomCode)+" ", "Bob")
	assert.Equal(t, created.RoomCode, joined.RoomCode)
}

func TestHandler_JoinRoom_NotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(HandlerDeps{})
	c := testutil.NewSimpleClient("c1")

	f.send(t, c, protocol.MsgJoinRoom, protocol.JoinRoomPayload{RoomCode: "ZZZZ", Name: "Bob"})

	require.NotNil(t, c.LastError())
	assert.Equal(t, protocol.ErrCodeRoomNotFound, c.LastError().Code)
}

func TestHandler_JoinRoom_GameStarted(t *testing.T) {
	t.Parallel()

	f := newFixture(HandlerDeps{})
	host, created := f.create(t, "P0")
	for _, name := range []string{"P1", "P2", "P3"} {
		f.join(t, created.RoomCode, name)
	}
	f.send(t, host, protocol.MsgStartGame, nil)
	require.Equal(t, protocol.PhaseDealing, f.rm.GetRoom(created.RoomCode).Phase())

	late := testutil.NewSimpleClient("late")
	f.send(t, late, protocol.MsgJoinRoom, protocol.JoinRoomPayload{RoomCode: created.RoomCode, Name: "Late"})

	require.NotNil(t, late.LastError())
	assert.Equal(t, protocol.ErrCodeGameStarted, late.LastError().Code)
}

func TestHandler_JoinRoom_LeavesPreviousRoom(t *testing.T) {
	t.Parallel()

	// 1. Setup
	f := newFixture(HandlerDeps{})
	c, first := f.create(t, "Alice")
	_, second := f.create(t, "Bob")
	require.Equal(t, 2, f.rm.Count())

	// 2. Execution
	f.send(t, c, protocol.MsgJoinRoom, protocol.JoinRoomPayload{RoomCode: second.RoomCode, Name: "Alice"})

	// 3. Verification
	assert.Nil(t, f.rm.GetRoom(first.RoomCode), "emptied room is removed")
	assert.Equal(t, second.RoomCode, c.GetRoom())
	assert.Contains(t, f.voice.Calls(), "delete:"+first.RoomCode)
	assert.Equal(t, 1, f.rm.Count())
}

func TestHandler_LeaveRoom(t *testing.T) {
	t.Parallel()

	// 1. Setup
	mockLimiter := new(testutil.MockChatLimiter)
	f := newFixture(HandlerDeps{ChatLimiter: mockLimiter})
	host, created := f.create(t, "Alice")
	guest, joined := f.join(t, created.RoomCode, "Bob")

	// 2. Expectations
	mockLimiter.On("RemovePlayer", joined.PlayerID).Return()

	// 3. Execution
	f.send(t, guest, protocol.MsgLeaveRoom, nil)

	// 4. Verification
	assert.Empty(t, guest.GetRoom())
	assert.Empty(t, guest.GetPlayerID())
	assert.Len(t, host.LastState().Players, 1)
	mockLimiter.AssertExpectations(t)
}

func TestHandler_UpdateSettings(t *testing.T) {
	t.Parallel()

	f := newFixture(HandlerDeps{})
	host, created := f.create(t, "Alice")
	guest, _ := f.join(t, created.RoomCode, "Bob")

	on := true
	day := 10
	f.send(t, host, protocol.MsgUpdateSettings, protocol.UpdateSettingsPayload{UseScapegoat: &on, DayDiscussionSeconds: &day})
	assert.Nil(t, host.LastError())

	settings := guest.LastState().Settings
	assert.True(t, settings.UseScapegoat)
	assert.Equal(t, 30, settings.DayDiscussionSeconds, "clamped to the minimum")

	f.send(t, guest, protocol.MsgUpdateSettings, protocol.UpdateSettingsPayload{UseScapegoat: &on})
	require.NotNil(t, guest.LastError())
	assert.Equal(t, protocol.ErrCodeNotHost, guest.LastError().Code)
}

func TestHandler_StartGame(t *testing.T) {
	t.Parallel()

	f := newFixture(HandlerDeps{})
	host, created := f.create(t, "P0")

	f.send(t, host, protocol.MsgStartGame, nil)
	require.NotNil(t, host.LastError())
	assert.Equal(t, protocol.ErrCodePlayerCount, host.LastError().Code)

	var guests []*testutil.SimpleClient
	for _, name := range []string{"P1", "P2", "P3"} {
		g, _ := f.join(t, created.RoomCode, name)
		guests = append(guests, g)
	}

	f.send(t, guests[0], protocol.MsgStartGame, nil)
	assert.Equal(t, protocol.ErrCodeNotHost, guests[0].LastError().Code)

	f.send(t, host, protocol.MsgStartGame, nil)
	assert.Equal(t, protocol.PhaseDealing, f.rm.GetRoom(created.RoomCode).Phase())
	assert.Equal(t, protocol.PhaseDealing, guests[2].LastState().Phase)
	assert.Equal(t, "mute:"+created.RoomCode, f.voice.Last())
}

func TestHandler_BackToLobby_WrongPhase(t *testing.T) {
	t.Parallel()

	f := newFixture(HandlerDeps{})
	host, _ := f.create(t, "Alice")

	f.send(t, host, protocol.MsgBackToLobby, nil)

	require.NotNil(t, host.LastError())
	assert.Equal(t, protocol.ErrCodeWrongPhase, host.LastError().Code)
}

func TestHandler_Reconnect(t *testing.T) {
	t.Parallel()

	// 1. Setup
	f := newFixture(HandlerDeps{})
	old, created := f.create(t, "Alice")
	f.h.OnDisconnect(old)
	fresh := testutil.NewSimpleClient("fresh")

	// 2. Execution
	f.send(t, fresh, protocol.MsgReconnect, protocol.ReconnectPayload{
		SessionToken: created.SessionToken,
		RoomCode:     lower(created.RoomCode),
	})

	// 3. Verification
	assert.Nil(t, fresh.LastError())
	require.NotNil(t, fresh.Last(protocol.MsgReconnected))
	assert.Equal(t, created.PlayerID, fresh.GetPlayerID())
	assert.Equal(t, created.RoomCode, fresh.GetRoom())
	assert.True(t, fresh.LastState().Players[0].IsConnected)
}

func TestHandler_Reconnect_Errors(t *testing.T) {
	t.Parallel()

	f := newFixture(HandlerDeps{})
	_, created := f.create(t, "Alice")

	tests := []struct {
		name    string
		payload protocol.ReconnectPayload
		code    int
	}{
		{"empty token", protocol.ReconnectPayload{RoomCode: created.RoomCode}, protocol.ErrCodeInvalidMsg},
		{"unknown room", protocol.ReconnectPayload{SessionToken: created.SessionToken, RoomCode: "ZZZZ"}, protocol.ErrCodeRoomNotFound},
		{"unknown token", protocol.ReconnectPayload{SessionToken: "nope", RoomCode: created.RoomCode}, protocol.ErrCodeSessionExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testutil.NewSimpleClient("c-" + tt.name)
			f.send(t, c, protocol.MsgReconnect, tt.payload)
			require.NotNil(t, c.LastError())
			assert.Equal(t, tt.code, c.LastError().Code)
		})
	}
}

func TestHandler_Reconnect_AfterGraceExpired(t *testing.T) {
	t.Parallel()

	f := newFixture(HandlerDeps{})
	host, created := f.create(t, "Alice")
	guest, joined := f.join(t, created.RoomCode, "Bob")

	f.h.OnDisconnect(guest)
	f.clock.Advance(config.Default().Game.ReconnectTimeoutDuration())

	fresh := testutil.NewSimpleClient("fresh")
	f.send(t, fresh, protocol.MsgReconnect, protocol.ReconnectPayload{
		SessionToken: joined.SessionToken,
		RoomCode:     created.RoomCode,
	})

	require.NotNil(t, fresh.LastError())
	assert.Equal(t, protocol.ErrCodeSessionExpired, fresh.LastError().Code)
	assert.Len(t, host.LastState().Players, 1)
}
