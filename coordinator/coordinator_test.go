package coordinator

import (
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/wfunc/roomserver/broadcast"
	"github.com/wfunc/roomserver/protocol"
	"github.com/wfunc/roomserver/room"
	"github.com/wfunc/roomserver/session"
)

// MockConnection is a test double for the network.Connection interface that
// records every envelope sent to it.
type MockConnection struct {
	sent []*protocol.Envelope
}

func (m *MockConnection) Send(env *protocol.Envelope) error   { m.sent = append(m.sent, env); return nil }
func (m *MockConnection) Read() (*protocol.Envelope, error)   { return nil, nil }
func (m *MockConnection) Close() error                        { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration) {}

func (m *MockConnection) lastOfType(t protocol.MessageType) *protocol.Envelope {
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].MessageType == t {
			return m.sent[i]
		}
	}
	return nil
}

func (m *MockConnection) countOfType(t protocol.MessageType) int {
	count := 0
	for _, env := range m.sent {
		if env.MessageType == t {
			count++
		}
	}
	return count
}

type testEnv struct {
	coord    *Coordinator
	rooms    *room.Manager
	sessions *session.Manager
}

func newTestEnv() *testEnv {
	rooms := room.NewRoomManager()
	sessions := session.NewManager()
	broadcaster := broadcast.NewRoomBroadcaster(rooms, sessions)
	return &testEnv{
		coord:    New(rooms, sessions, broadcaster),
		rooms:    rooms,
		sessions: sessions,
	}
}

func (e *testEnv) connect(id string) (*session.Session, *MockConnection) {
	conn := &MockConnection{}
	sess := session.NewSession(id, conn)
	e.sessions.Add(sess)
	return sess, conn
}

func request(t *testing.T, msgType protocol.MessageType, payload interface{}) *protocol.Envelope {
	t.Helper()
	env, err := protocol.New(msgType, payload)
	if err != nil {
		t.Fatalf("Failed to build %s request: %v", msgType, err)
	}
	return env
}

func decodeData(t *testing.T, env *protocol.Envelope, v interface{}) {
	t.Helper()
	if env == nil {
		t.Fatal("Expected an envelope, got none")
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("Failed to decode %s payload: %v", env.MessageType, err)
	}
}

func roomInfoSnapshot(t *testing.T, env *protocol.Envelope) room.Snapshot {
	t.Helper()
	var data struct {
		Room room.Snapshot `json:"room"`
	}
	decodeData(t, env, &data)
	return data.Room
}

func errorText(t *testing.T, env *protocol.Envelope) string {
	t.Helper()
	var data struct {
		Error string `json:"error"`
	}
	decodeData(t, env, &data)
	return data.Error
}

func createRoom(t *testing.T, e *testEnv, sess *session.Session, conn *MockConnection, name string, max int, password, playerName string) string {
	t.Helper()
	e.coord.HandleEnvelope(sess, request(t, protocol.MsgCreateRoom, protocol.CreateRoomRequest{
		RoomName:   name,
		MaxPlayers: max,
		Password:   password,
		PlayerName: playerName,
	}))

	var data struct {
		RoomID string `json:"room_id"`
	}
	decodeData(t, conn.lastOfType(protocol.MsgSuccess), &data)
	if data.RoomID == "" {
		t.Fatal("create_room success should carry a non-empty room_id")
	}
	return data.RoomID
}

func TestCreateRoom_Validation(t *testing.T) {
	e := newTestEnv()
	sess, conn := e.connect("c1")

	cases := []protocol.CreateRoomRequest{
		{RoomName: "", MaxPlayers: 4, PlayerName: "Alice"},
		{RoomName: "   ", MaxPlayers: 4, PlayerName: "Alice"},
		{RoomName: "Room", MaxPlayers: 1, PlayerName: "Alice"},
		{RoomName: "Room", MaxPlayers: 7, PlayerName: "Alice"},
	}

	for _, req := range cases {
		e.coord.HandleEnvelope(sess, request(t, protocol.MsgCreateRoom, req))
	}

	if got := conn.countOfType(protocol.MsgError); got != len(cases) {
		t.Errorf("Expected %d error responses, got %d", len(cases), got)
	}
	if e.rooms.Count() != 0 {
		t.Errorf("Invalid create_room requests must not create rooms, found %d", e.rooms.Count())
	}
	if sess.Room() != "" {
		t.Errorf("Session should not be in a room, got %q", sess.Room())
	}
}

func TestLobbyFlow_CreateJoinAIReadyStart(t *testing.T) {
	e := newTestEnv()
	alice, aliceConn := e.connect("c1")
	bob, bobConn := e.connect("c2")

	roomID := createRoom(t, e, alice, aliceConn, "Alice's Room", 4, "", "Alice")

	// Listing shows one room with a single player.
	e.coord.HandleEnvelope(alice, request(t, protocol.MsgRoomList, map[string]interface{}{}))
	var listing struct {
		Rooms []room.Snapshot `json:"rooms"`
	}
	decodeData(t, aliceConn.lastOfType(protocol.MsgRoomList), &listing)
	if len(listing.Rooms) != 1 || listing.Rooms[0].CurrentPlayers != 1 {
		t.Fatalf("Expected one room with one player, got %+v", listing.Rooms)
	}

	// Bob joins; both members see the updated snapshot with Alice as host.
	e.coord.HandleEnvelope(bob, request(t, protocol.MsgJoinRoom, protocol.JoinRoomRequest{
		RoomID: roomID, PlayerName: "Bob",
	}))
	snap := roomInfoSnapshot(t, aliceConn.lastOfType(protocol.MsgRoomInfo))
	if snap.CurrentPlayers != 2 || snap.HostID != "c1" {
		t.Fatalf("Unexpected snapshot after join: %+v", snap)
	}
	if bobConn.lastOfType(protocol.MsgRoomInfo) == nil {
		t.Fatal("Joiner should also receive the room_info broadcast")
	}

	// Host adds one AI player.
	e.coord.HandleEnvelope(alice, request(t, protocol.MsgAddAIPlayer, protocol.AddAIPlayerRequest{
		Difficulty: "简单",
	}))
	snap = roomInfoSnapshot(t, aliceConn.lastOfType(protocol.MsgRoomInfo))
	if snap.CurrentPlayers != 3 || snap.AICount != 1 {
		t.Fatalf("Expected 3 players with 1 AI, got %+v", snap)
	}

	// Bob gets ready; Alice (host, implicitly ready) starts the game.
	e.coord.HandleEnvelope(bob, request(t, protocol.MsgPlayerReady, protocol.PlayerReadyRequest{Ready: true}))
	e.coord.HandleEnvelope(alice, request(t, protocol.MsgPlayerAction, map[string]interface{}{
		"action": "start_game",
		"data":   map[string]interface{}{"map_file": "2.json"},
	}))

	for name, conn := range map[string]*MockConnection{"alice": aliceConn, "bob": bobConn} {
		start := conn.lastOfType(protocol.MsgGameStart)
		if start == nil {
			t.Fatalf("%s did not receive the game_start broadcast", name)
		}
		var data struct {
			MapFile string        `json:"map_file"`
			Players []room.Member `json:"players"`
		}
		decodeData(t, start, &data)
		if data.MapFile != "2.json" {
			t.Errorf("Expected map 2.json, got %s", data.MapFile)
		}
		if len(data.Players) != 3 {
			t.Errorf("Expected a 3-entry roster, got %d", len(data.Players))
		}
	}
}

func TestJoinRoom_Full(t *testing.T) {
	e := newTestEnv()
	c1, conn1 := e.connect("c1")
	c2, _ := e.connect("c2")
	c3, conn3 := e.connect("c3")

	roomID := createRoom(t, e, c1, conn1, "Tiny", 2, "", "Alice")
	e.coord.HandleEnvelope(c2, request(t, protocol.MsgJoinRoom, protocol.JoinRoomRequest{RoomID: roomID, PlayerName: "Bob"}))

	e.coord.HandleEnvelope(c3, request(t, protocol.MsgJoinRoom, protocol.JoinRoomRequest{RoomID: roomID, PlayerName: "Carol"}))
	if msg := errorText(t, conn3.lastOfType(protocol.MsgError)); msg != "room is full" {
		t.Errorf("Expected full-room error, got %q", msg)
	}

	e.coord.HandleEnvelope(c3, request(t, protocol.MsgRoomList, map[string]interface{}{}))
	var listing struct {
		Rooms []room.Snapshot `json:"rooms"`
	}
	decodeData(t, conn3.lastOfType(protocol.MsgRoomList), &listing)
	if len(listing.Rooms) != 1 || listing.Rooms[0].CurrentPlayers != 2 || listing.Rooms[0].MaxPlayers != 2 {
		t.Errorf("Failed join must not mutate membership: %+v", listing.Rooms)
	}
}

func TestJoinRoom_WrongPassword(t *testing.T) {
	e := newTestEnv()
	c1, conn1 := e.connect("c1")
	c2, conn2 := e.connect("c2")

	roomID := createRoom(t, e, c1, conn1, "Secret", 4, "hunter2", "Alice")

	e.coord.HandleEnvelope(c2, request(t, protocol.MsgJoinRoom, protocol.JoinRoomRequest{
		RoomID: roomID, Password: "wrong", PlayerName: "Bob",
	}))
	if msg := errorText(t, conn2.lastOfType(protocol.MsgError)); msg != "incorrect room password" {
		t.Errorf("Expected password error, got %q", msg)
	}

	r, _ := e.rooms.GetRoom(roomID)
	if r.MemberCount() != 1 {
		t.Errorf("Failed join must not mutate membership, got %d members", r.MemberCount())
	}

	e.coord.HandleEnvelope(c2, request(t, protocol.MsgJoinRoom, protocol.JoinRoomRequest{
		RoomID: roomID, Password: "hunter2", PlayerName: "Bob",
	}))
	if r.MemberCount() != 2 {
		t.Errorf("Correct password should admit the player, got %d members", r.MemberCount())
	}
}

func TestJoinRoom_Unknown(t *testing.T) {
	e := newTestEnv()
	sess, conn := e.connect("c1")

	e.coord.HandleEnvelope(sess, request(t, protocol.MsgJoinRoom, protocol.JoinRoomRequest{
		RoomID: "no-such-room", PlayerName: "Alice",
	}))
	if msg := errorText(t, conn.lastOfType(protocol.MsgError)); msg != "room not found" {
		t.Errorf("Expected room-not-found error, got %q", msg)
	}
}

func TestStartGame_Guards(t *testing.T) {
	e := newTestEnv()
	alice, aliceConn := e.connect("c1")
	bob, bobConn := e.connect("c2")

	roomID := createRoom(t, e, alice, aliceConn, "Guarded", 4, "", "Alice")

	// Fewer than two members.
	e.coord.HandleEnvelope(alice, request(t, protocol.MsgPlayerAction, map[string]interface{}{
		"action": "start_game", "data": map[string]interface{}{"map_file": "1.json"},
	}))
	if msg := errorText(t, aliceConn.lastOfType(protocol.MsgError)); msg != "at least 2 players are required to start" {
		t.Errorf("Expected min-players error, got %q", msg)
	}

	e.coord.HandleEnvelope(bob, request(t, protocol.MsgJoinRoom, protocol.JoinRoomRequest{RoomID: roomID, PlayerName: "Bob"}))

	// Not the host.
	e.coord.HandleEnvelope(bob, request(t, protocol.MsgPlayerAction, map[string]interface{}{
		"action": "start_game", "data": map[string]interface{}{},
	}))
	if msg := errorText(t, bobConn.lastOfType(protocol.MsgError)); msg != "only the host can start the game" {
		t.Errorf("Expected not-host error, got %q", msg)
	}

	// Bob has not readied up; the error names the count.
	e.coord.HandleEnvelope(alice, request(t, protocol.MsgPlayerAction, map[string]interface{}{
		"action": "start_game", "data": map[string]interface{}{},
	}))
	if msg := errorText(t, aliceConn.lastOfType(protocol.MsgError)); !strings.Contains(msg, "1 player(s) are not ready") {
		t.Errorf("Expected not-ready count in error, got %q", msg)
	}

	// No game_start went out and the room is still open.
	if aliceConn.countOfType(protocol.MsgGameStart) != 0 || bobConn.countOfType(protocol.MsgGameStart) != 0 {
		t.Error("Guarded start must not broadcast game_start")
	}
	r, _ := e.rooms.GetRoom(roomID)
	if r.GetStatus() != room.StatusOpen {
		t.Error("Room must stay open after a rejected start")
	}
}

func TestToggleReadyViaPlayerAction(t *testing.T) {
	e := newTestEnv()
	alice, aliceConn := e.connect("c1")
	bob, _ := e.connect("c2")

	roomID := createRoom(t, e, alice, aliceConn, "Toggle", 4, "", "Alice")
	e.coord.HandleEnvelope(bob, request(t, protocol.MsgJoinRoom, protocol.JoinRoomRequest{RoomID: roomID, PlayerName: "Bob"}))

	e.coord.HandleEnvelope(bob, request(t, protocol.MsgPlayerAction, map[string]interface{}{
		"action": "toggle_ready", "data": map[string]interface{}{"ready": true},
	}))

	r, _ := e.rooms.GetRoom(roomID)
	if r.NotReadyCount() != 0 {
		t.Error("toggle_ready should mark the player ready")
	}
}

func TestAddRemoveAI_HostOnly(t *testing.T) {
	e := newTestEnv()
	alice, aliceConn := e.connect("c1")
	bob, bobConn := e.connect("c2")

	roomID := createRoom(t, e, alice, aliceConn, "AI Room", 4, "", "Alice")
	e.coord.HandleEnvelope(bob, request(t, protocol.MsgJoinRoom, protocol.JoinRoomRequest{RoomID: roomID, PlayerName: "Bob"}))

	e.coord.HandleEnvelope(bob, request(t, protocol.MsgAddAIPlayer, protocol.AddAIPlayerRequest{Difficulty: "简单"}))
	if msg := errorText(t, bobConn.lastOfType(protocol.MsgError)); msg != "only the host can add AI players" {
		t.Errorf("Expected host-only error, got %q", msg)
	}

	e.coord.HandleEnvelope(alice, request(t, protocol.MsgAddAIPlayer, protocol.AddAIPlayerRequest{Difficulty: "简单"}))
	var data struct {
		AIID string `json:"ai_id"`
	}
	decodeData(t, aliceConn.lastOfType(protocol.MsgSuccess), &data)
	if data.AIID == "" {
		t.Fatal("add_ai_player success should carry the AI id")
	}

	e.coord.HandleEnvelope(alice, request(t, protocol.MsgRemoveAIPlayer, protocol.RemoveAIPlayerRequest{AIID: data.AIID}))
	r, _ := e.rooms.GetRoom(roomID)
	if r.MemberCount() != 2 {
		t.Errorf("Expected 2 members after AI removal, got %d", r.MemberCount())
	}

	e.coord.HandleEnvelope(alice, request(t, protocol.MsgRemoveAIPlayer, protocol.RemoveAIPlayerRequest{AIID: data.AIID}))
	if msg := errorText(t, aliceConn.lastOfType(protocol.MsgError)); msg != "AI player not found" {
		t.Errorf("Expected missing-AI error, got %q", msg)
	}
}

func TestHostDisconnect_ReassignsHost(t *testing.T) {
	e := newTestEnv()
	alice, aliceConn := e.connect("c1")
	bob, bobConn := e.connect("c2")

	roomID := createRoom(t, e, alice, aliceConn, "Resilient", 4, "", "Alice")
	e.coord.HandleEnvelope(bob, request(t, protocol.MsgJoinRoom, protocol.JoinRoomRequest{RoomID: roomID, PlayerName: "Bob"}))

	// Abrupt transport closure: the server removes the session first, then
	// lets the coordinator evict the player.
	e.sessions.Remove("c1")
	e.coord.HandleDisconnect(alice)

	snap := roomInfoSnapshot(t, bobConn.lastOfType(protocol.MsgRoomInfo))
	if snap.HostID != "c2" {
		t.Errorf("Expected c2 to become host, got %q", snap.HostID)
	}
	if _, exists := e.rooms.GetRoom(roomID); !exists {
		t.Error("Room must survive while a human remains")
	}
}

func TestLeaveRoom_LastHumanDeletesRoom(t *testing.T) {
	e := newTestEnv()
	alice, aliceConn := e.connect("c1")

	roomID := createRoom(t, e, alice, aliceConn, "Doomed", 4, "", "Alice")
	e.coord.HandleEnvelope(alice, request(t, protocol.MsgAddAIPlayer, protocol.AddAIPlayerRequest{Difficulty: "简单"}))

	e.coord.HandleEnvelope(alice, request(t, protocol.MsgLeaveRoom, map[string]interface{}{}))

	// AI-only rooms are not kept alive.
	if _, exists := e.rooms.GetRoom(roomID); exists {
		t.Error("Room must be deleted once the last human leaves")
	}
	if sess, _ := e.sessions.Get("c1"); sess.Room() != "" {
		t.Error("Session room association must be cleared on leave")
	}

	e.coord.HandleEnvelope(alice, request(t, protocol.MsgRoomList, map[string]interface{}{}))
	var listing struct {
		Rooms []room.Snapshot `json:"rooms"`
	}
	decodeData(t, aliceConn.lastOfType(protocol.MsgRoomList), &listing)
	if len(listing.Rooms) != 0 {
		t.Errorf("Deleted room must not appear in listings: %+v", listing.Rooms)
	}
}

func TestRoomList_ExcludesStartedRooms(t *testing.T) {
	e := newTestEnv()
	alice, aliceConn := e.connect("c1")
	bob, _ := e.connect("c2")
	carol, carolConn := e.connect("c3")

	roomID := createRoom(t, e, alice, aliceConn, "In Progress", 4, "", "Alice")
	e.coord.HandleEnvelope(bob, request(t, protocol.MsgJoinRoom, protocol.JoinRoomRequest{RoomID: roomID, PlayerName: "Bob"}))
	e.coord.HandleEnvelope(bob, request(t, protocol.MsgPlayerReady, protocol.PlayerReadyRequest{Ready: true}))
	e.coord.HandleEnvelope(alice, request(t, protocol.MsgPlayerAction, map[string]interface{}{
		"action": "start_game", "data": map[string]interface{}{"map_file": "1.json"},
	}))

	e.coord.HandleEnvelope(carol, request(t, protocol.MsgRoomList, map[string]interface{}{}))
	var listing struct {
		Rooms []room.Snapshot `json:"rooms"`
	}
	decodeData(t, carolConn.lastOfType(protocol.MsgRoomList), &listing)
	if len(listing.Rooms) != 0 {
		t.Errorf("Started rooms must be hidden from listings: %+v", listing.Rooms)
	}

	// Direct joins are rejected as well.
	e.coord.HandleEnvelope(carol, request(t, protocol.MsgJoinRoom, protocol.JoinRoomRequest{RoomID: roomID, PlayerName: "Carol"}))
	if msg := errorText(t, carolConn.lastOfType(protocol.MsgError)); msg != "game already started" {
		t.Errorf("Expected started-game error, got %q", msg)
	}
}

func TestPlayerAction_Passthrough(t *testing.T) {
	e := newTestEnv()
	alice, aliceConn := e.connect("c1")
	bob, bobConn := e.connect("c2")

	roomID := createRoom(t, e, alice, aliceConn, "Relay", 4, "", "Alice")
	e.coord.HandleEnvelope(bob, request(t, protocol.MsgJoinRoom, protocol.JoinRoomRequest{RoomID: roomID, PlayerName: "Bob"}))

	sentBefore := len(aliceConn.sent)
	e.coord.HandleEnvelope(bob, request(t, protocol.MsgPlayerAction, map[string]interface{}{
		"action": "roll_dice", "data": map[string]interface{}{"value": 6},
	}))

	relay := aliceConn.lastOfType(protocol.MsgPlayerAction)
	if relay == nil {
		t.Fatal("Other members should receive the relayed action")
	}
	if relay.SenderID != "c2" {
		t.Errorf("Relay should carry the acting player's id, got %q", relay.SenderID)
	}
	var action protocol.PlayerActionRequest
	decodeData(t, relay, &action)
	if action.Action != "roll_dice" {
		t.Errorf("Relay payload must be unmodified, got %+v", action)
	}
	if len(aliceConn.sent) != sentBefore+1 {
		t.Errorf("Expected exactly one relayed envelope, got %d new", len(aliceConn.sent)-sentBefore)
	}

	if bobConn.lastOfType(protocol.MsgPlayerAction) != nil {
		t.Error("The sender must not receive its own relayed action")
	}
	var data struct {
		Message string `json:"message"`
	}
	decodeData(t, bobConn.lastOfType(protocol.MsgSuccess), &data)
	if data.Message != "action relayed" {
		t.Errorf("Sender should get a single success, got %q", data.Message)
	}
}

func TestPlayerAction_NotInRoom(t *testing.T) {
	e := newTestEnv()
	sess, conn := e.connect("c1")

	e.coord.HandleEnvelope(sess, request(t, protocol.MsgPlayerAction, map[string]interface{}{
		"action": "roll_dice", "data": map[string]interface{}{},
	}))
	if msg := errorText(t, conn.lastOfType(protocol.MsgError)); msg != "not in a room" {
		t.Errorf("Expected not-in-room error, got %q", msg)
	}
}

func TestChatMessage_Relay(t *testing.T) {
	e := newTestEnv()
	alice, aliceConn := e.connect("c1")
	bob, bobConn := e.connect("c2")

	roomID := createRoom(t, e, alice, aliceConn, "Chatty", 4, "", "Alice")
	e.coord.HandleEnvelope(bob, request(t, protocol.MsgJoinRoom, protocol.JoinRoomRequest{RoomID: roomID, PlayerName: "Bob"}))

	e.coord.HandleEnvelope(bob, request(t, protocol.MsgChatMessage, protocol.ChatMessageRequest{Content: "hello"}))

	for name, conn := range map[string]*MockConnection{"alice": aliceConn, "bob": bobConn} {
		chat := conn.lastOfType(protocol.MsgChatMessage)
		if chat == nil {
			t.Fatalf("%s did not receive the chat broadcast", name)
		}
		var data struct {
			Content    string `json:"content"`
			PlayerName string `json:"player_name"`
		}
		decodeData(t, chat, &data)
		if data.Content != "hello" || data.PlayerName != "Bob" {
			t.Errorf("Unexpected chat payload: %+v", data)
		}
	}

	e.coord.HandleEnvelope(bob, request(t, protocol.MsgChatMessage, protocol.ChatMessageRequest{Content: "   "}))
	if msg := errorText(t, bobConn.lastOfType(protocol.MsgError)); msg != "chat message must not be empty" {
		t.Errorf("Expected empty-chat error, got %q", msg)
	}
}

func TestUnknownMessageType(t *testing.T) {
	e := newTestEnv()
	sess, conn := e.connect("c1")

	e.coord.HandleEnvelope(sess, request(t, protocol.MessageType("teleport"), map[string]interface{}{}))
	if msg := errorText(t, conn.lastOfType(protocol.MsgError)); !strings.Contains(msg, "teleport") {
		t.Errorf("Error should name the unrecognized kind, got %q", msg)
	}

	// The connection keeps working afterwards.
	e.coord.HandleEnvelope(sess, request(t, protocol.MsgHeartbeat, map[string]interface{}{}))
	hb := conn.lastOfType(protocol.MsgHeartbeat)
	if hb == nil {
		t.Fatal("Heartbeat should still be answered after an unknown kind")
	}
	var data protocol.HeartbeatData
	decodeData(t, hb, &data)
	if data.Timestamp <= 0 {
		t.Error("Heartbeat echo should carry a server timestamp")
	}
}

func TestCapacityInvariantAcrossOperations(t *testing.T) {
	e := newTestEnv()
	alice, aliceConn := e.connect("c1")
	bob, _ := e.connect("c2")

	roomID := createRoom(t, e, alice, aliceConn, "Bounded", 3, "", "Alice")
	e.coord.HandleEnvelope(bob, request(t, protocol.MsgJoinRoom, protocol.JoinRoomRequest{RoomID: roomID, PlayerName: "Bob"}))
	e.coord.HandleEnvelope(alice, request(t, protocol.MsgAddAIPlayer, protocol.AddAIPlayerRequest{Difficulty: "简单"}))
	e.coord.HandleEnvelope(alice, request(t, protocol.MsgAddAIPlayer, protocol.AddAIPlayerRequest{Difficulty: "困难"}))

	r, _ := e.rooms.GetRoom(roomID)
	if r.MemberCount() > 3 {
		t.Errorf("Capacity invariant violated: %d members in a 3-player room", r.MemberCount())
	}
	if msg := errorText(t, aliceConn.lastOfType(protocol.MsgError)); msg != "room is full" {
		t.Errorf("Expected full-room error on the second AI, got %q", msg)
	}
}
