// coordinator/coordinator.go
package coordinator

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/wfunc/roomserver/logger"
	"github.com/wfunc/roomserver/protocol"
	"github.com/wfunc/roomserver/room"
	"github.com/wfunc/roomserver/session"
)

const defaultAIDifficulty = "简单"

// Coordinator owns all room and membership mutations. A single mutex makes
// the handling of one envelope -- validation, state change, broadcast --
// an atomic unit, so no connection ever observes a half-updated room and a
// broadcast caused by request R is fully attempted before the next request
// touching the same room is dequeued.
type Coordinator struct {
	roomManager    *room.Manager
	sessionManager *session.Manager
	broadcaster    Broadcaster
	recorder       Recorder
	metrics        Metrics
	mutex          sync.Mutex
}

func New(roomManager *room.Manager, sessionManager *session.Manager, broadcaster Broadcaster) *Coordinator {
	return &Coordinator{
		roomManager:    roomManager,
		sessionManager: sessionManager,
		broadcaster:    broadcaster,
	}
}

// SetRecorder wires an optional game-record sink.
func (c *Coordinator) SetRecorder(r Recorder) {
	c.recorder = r
}

// SetMetrics wires an optional metrics sink.
func (c *Coordinator) SetMetrics(m Metrics) {
	c.metrics = m
}

// HandleEnvelope dispatches one client envelope. Every path answers the
// caller with exactly one success (possibly followed by a room_info chain)
// or exactly one error; a failed precondition never mutates state.
func (c *Coordinator) HandleEnvelope(sess *session.Session, env *protocol.Envelope) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	switch env.MessageType {
	case protocol.MsgHeartbeat:
		c.handleHeartbeat(sess)
	case protocol.MsgCreateRoom:
		c.handleCreateRoom(sess, env)
	case protocol.MsgJoinRoom:
		c.handleJoinRoom(sess, env)
	case protocol.MsgLeaveRoom:
		c.handleLeaveRoom(sess)
	case protocol.MsgRoomList:
		c.handleRoomList(sess)
	case protocol.MsgAddAIPlayer:
		c.handleAddAIPlayer(sess, env)
	case protocol.MsgRemoveAIPlayer:
		c.handleRemoveAIPlayer(sess, env)
	case protocol.MsgPlayerReady:
		c.handlePlayerReady(sess, env)
	case protocol.MsgPlayerAction:
		c.handlePlayerAction(sess, env)
	case protocol.MsgChatMessage:
		c.handleChatMessage(sess, env)
	default:
		if protocol.Known(env.MessageType) {
			// Server-to-client kinds arriving from a client.
			c.sendError(sess, fmt.Sprintf("unsupported message type: %s", env.MessageType))
		} else {
			c.sendError(sess, fmt.Sprintf("unknown message type: %s", env.MessageType))
		}
	}
}

// HandleDisconnect evicts a dropped connection from its room, exactly as an
// explicit leave_room would, and deletes the room once no humans remain.
func (c *Coordinator) HandleDisconnect(sess *session.Session) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.evict(sess)
}

func (c *Coordinator) handleHeartbeat(sess *session.Session) {
	c.send(sess, protocol.NewServer(protocol.MsgHeartbeat, protocol.HeartbeatData{Timestamp: protocol.Now()}))
}

func (c *Coordinator) handleCreateRoom(sess *session.Session, env *protocol.Envelope) {
	var req protocol.CreateRoomRequest
	if err := env.Decode(&req); err != nil {
		c.sendError(sess, "invalid create_room payload")
		return
	}

	req.RoomName = strings.TrimSpace(req.RoomName)
	if req.RoomName == "" {
		c.sendError(sess, "room name must not be empty")
		return
	}
	if req.MaxPlayers < 2 || req.MaxPlayers > 6 {
		c.sendError(sess, "max players must be between 2 and 6")
		return
	}
	if sess.Room() != "" {
		c.sendError(sess, "already in a room")
		return
	}

	roomID := uuid.New().String()[:8]
	r := c.roomManager.CreateRoom(roomID, req.RoomName, req.MaxPlayers, req.Password)
	r.AddHuman(sess.ID, req.PlayerName)
	sess.SetRoom(roomID)
	sess.SetPlayerName(req.PlayerName)

	logger.Log.Infof("Session %s created room %s (%s, max %d)", sess.ID, roomID, req.RoomName, req.MaxPlayers)

	c.send(sess, protocol.NewSuccess("room created: "+req.RoomName, map[string]interface{}{
		"room_id":     roomID,
		"room_name":   req.RoomName,
		"max_players": req.MaxPlayers,
	}))
	c.broadcastRoomInfo(r)
}

func (c *Coordinator) handleJoinRoom(sess *session.Session, env *protocol.Envelope) {
	var req protocol.JoinRoomRequest
	if err := env.Decode(&req); err != nil {
		c.sendError(sess, "invalid join_room payload")
		return
	}

	if req.RoomID == "" {
		c.sendError(sess, "missing room id")
		return
	}
	if sess.Room() != "" {
		c.sendError(sess, "already in a room")
		return
	}

	r, exists := c.roomManager.GetRoom(req.RoomID)
	if !exists {
		c.sendError(sess, "room not found")
		return
	}
	if r.GetStatus() != room.StatusOpen {
		c.sendError(sess, "game already started")
		return
	}
	if !r.CheckPassword(req.Password) {
		c.sendError(sess, "incorrect room password")
		return
	}
	if !r.AddHuman(sess.ID, req.PlayerName) {
		c.sendError(sess, "room is full")
		return
	}

	sess.SetRoom(req.RoomID)
	sess.SetPlayerName(req.PlayerName)

	logger.Log.Infof("Player %s (%s) joined room %s", req.PlayerName, sess.ID, req.RoomID)

	c.send(sess, protocol.NewSuccess("joined room: "+r.Name, map[string]interface{}{
		"room_id":     r.ID,
		"player_name": req.PlayerName,
	}))
	c.broadcastRoomInfo(r)
}

func (c *Coordinator) handleLeaveRoom(sess *session.Session) {
	roomID := sess.Room()
	if roomID == "" {
		c.sendError(sess, "not in a room")
		return
	}

	c.evict(sess)
	c.send(sess, protocol.NewSuccess("left room", nil))
}

// evict removes a session's player from its room, reassigning the host or
// deleting the room as needed. Shared by leave_room and disconnect cleanup.
func (c *Coordinator) evict(sess *session.Session) {
	roomID := sess.Room()
	if roomID == "" {
		return
	}
	sess.SetRoom("")

	r, exists := c.roomManager.GetRoom(roomID)
	if !exists {
		return
	}

	r.RemoveHuman(sess.ID)
	if r.HumanCount() == 0 {
		// AI-only rooms are not kept alive.
		c.roomManager.RemoveRoom(roomID)
		logger.Log.Infof("Room %s deleted (no human players left)", roomID)
		return
	}
	c.broadcastRoomInfo(r)
}

func (c *Coordinator) handleRoomList(sess *session.Session) {
	env := protocol.NewServer(protocol.MsgRoomList, map[string]interface{}{
		"rooms": c.roomManager.ListOpen(),
	})
	c.send(sess, env)
}

func (c *Coordinator) handleAddAIPlayer(sess *session.Session, env *protocol.Envelope) {
	r, ok := c.currentRoom(sess)
	if !ok {
		return
	}
	if !r.IsHost(sess.ID) {
		c.sendError(sess, "only the host can add AI players")
		return
	}

	var req protocol.AddAIPlayerRequest
	if len(env.Data) > 0 {
		if err := env.Decode(&req); err != nil {
			c.sendError(sess, "invalid add_ai_player payload")
			return
		}
	}
	if req.Difficulty == "" {
		req.Difficulty = defaultAIDifficulty
	}

	aiID, added := r.AddAI(req.Difficulty)
	if !added {
		c.sendError(sess, "room is full")
		return
	}

	logger.Log.Infof("AI player %s added to room %s", aiID, r.ID)

	c.send(sess, protocol.NewSuccess(fmt.Sprintf("AI player added (difficulty: %s)", req.Difficulty), map[string]interface{}{
		"ai_id": aiID,
	}))
	c.broadcastRoomInfo(r)
}

func (c *Coordinator) handleRemoveAIPlayer(sess *session.Session, env *protocol.Envelope) {
	r, ok := c.currentRoom(sess)
	if !ok {
		return
	}
	if !r.IsHost(sess.ID) {
		c.sendError(sess, "only the host can remove AI players")
		return
	}

	var req protocol.RemoveAIPlayerRequest
	if err := env.Decode(&req); err != nil || req.AIID == "" {
		c.sendError(sess, "missing ai_id")
		return
	}
	if !r.RemoveAI(req.AIID) {
		c.sendError(sess, "AI player not found")
		return
	}

	logger.Log.Infof("AI player %s removed from room %s", req.AIID, r.ID)

	c.send(sess, protocol.NewSuccess("AI player removed", nil))
	c.broadcastRoomInfo(r)
}

func (c *Coordinator) handlePlayerReady(sess *session.Session, env *protocol.Envelope) {
	r, ok := c.currentRoom(sess)
	if !ok {
		return
	}

	// Absent field means ready, matching clients in the field.
	ready := true
	var req struct {
		Ready *bool `json:"ready"`
	}
	if len(env.Data) > 0 {
		if err := env.Decode(&req); err != nil {
			c.sendError(sess, "invalid player_ready payload")
			return
		}
		if req.Ready != nil {
			ready = *req.Ready
		}
	}

	c.setReady(sess, r, ready)
}

// setReady is the single mutation behind both player_ready and
// player_action{toggle_ready}.
func (c *Coordinator) setReady(sess *session.Session, r *room.Room, ready bool) {
	if !r.SetReady(sess.ID, ready) {
		c.sendError(sess, "player not in room")
		return
	}

	state := "ready"
	if !ready {
		state = "not ready"
	}
	c.send(sess, protocol.NewSuccess("ready state updated: "+state, nil))
	c.broadcastRoomInfo(r)
}

func (c *Coordinator) handlePlayerAction(sess *session.Session, env *protocol.Envelope) {
	r, ok := c.currentRoom(sess)
	if !ok {
		return
	}

	var req protocol.PlayerActionRequest
	if err := env.Decode(&req); err != nil {
		c.sendError(sess, "invalid player_action payload")
		return
	}
	if req.Action == "" {
		c.sendError(sess, "missing action")
		return
	}

	switch req.Action {
	case "start_game":
		var data protocol.StartGameData
		if len(req.Data) > 0 {
			if err := decodeRaw(req.Data, &data); err != nil {
				c.sendError(sess, "invalid start_game data")
				return
			}
		}
		c.startGame(sess, r, data.MapFile)
	case "toggle_ready":
		ready := true
		var data struct {
			Ready *bool `json:"ready"`
		}
		if len(req.Data) > 0 {
			if err := decodeRaw(req.Data, &data); err != nil {
				c.sendError(sess, "invalid toggle_ready data")
				return
			}
			if data.Ready != nil {
				ready = *data.Ready
			}
		}
		c.setReady(sess, r, ready)
	default:
		// Gameplay-opaque passthrough: relay to the rest of the room.
		relay := &protocol.Envelope{
			MessageType: protocol.MsgPlayerAction,
			Data:        env.Data,
			Timestamp:   protocol.Now(),
			SenderID:    sess.ID,
			RoomID:      r.ID,
		}
		c.broadcaster.BroadcastToRoomExcept(r.ID, sess.ID, relay)
		c.send(sess, protocol.NewSuccess("action relayed", nil))
	}
}

// startGame validates the OPEN -> STARTED transition and broadcasts a single
// game_start envelope with the map and the final tagged roster.
func (c *Coordinator) startGame(sess *session.Session, r *room.Room, mapFile string) {
	if !r.IsHost(sess.ID) {
		c.sendError(sess, "only the host can start the game")
		return
	}
	if r.GetStatus() != room.StatusOpen {
		c.sendError(sess, "game already started")
		return
	}
	if r.MemberCount() < 2 {
		c.sendError(sess, "at least 2 players are required to start")
		return
	}
	if notReady := r.NotReadyCount(); notReady > 0 {
		c.sendError(sess, fmt.Sprintf("%d player(s) are not ready", notReady))
		return
	}

	if mapFile == "" {
		mapFile = "1.json"
	}

	r.SetStatus(room.StatusStarted)
	snap := r.Snapshot()

	logger.Log.Infof("Room %s started game, map %s, %d players", r.ID, mapFile, snap.CurrentPlayers)

	start := protocol.NewServer(protocol.MsgGameStart, map[string]interface{}{
		"map_file":  mapFile,
		"players":   snap.Players,
		"room_id":   r.ID,
		"game_mode": "multiplayer",
	})
	start.RoomID = r.ID
	c.broadcaster.BroadcastToRoom(r.ID, start)
	c.send(sess, protocol.NewSuccess("game started", nil))

	if c.metrics != nil {
		c.metrics.IncGamesStarted()
	}
	if c.recorder != nil {
		c.recorder.RecordGameStart(snap, mapFile)
	}
}

func (c *Coordinator) handleChatMessage(sess *session.Session, env *protocol.Envelope) {
	r, ok := c.currentRoom(sess)
	if !ok {
		return
	}

	var req protocol.ChatMessageRequest
	if err := env.Decode(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		c.sendError(sess, "chat message must not be empty")
		return
	}

	chat := protocol.MustNew(protocol.MsgChatMessage, map[string]interface{}{
		"content":     req.Content,
		"player_name": sess.PlayerName(),
	})
	chat.SenderID = sess.ID
	chat.RoomID = r.ID
	c.broadcaster.BroadcastToRoom(r.ID, chat)
	c.send(sess, protocol.NewSuccess("chat message sent", nil))
}

// currentRoom resolves the caller's room or answers with an error.
func (c *Coordinator) currentRoom(sess *session.Session) (*room.Room, bool) {
	roomID := sess.Room()
	if roomID == "" {
		c.sendError(sess, "not in a room")
		return nil, false
	}
	r, exists := c.roomManager.GetRoom(roomID)
	if !exists {
		sess.SetRoom("")
		c.sendError(sess, "room not found")
		return nil, false
	}
	return r, true
}

func (c *Coordinator) broadcastRoomInfo(r *room.Room) {
	env := protocol.NewServer(protocol.MsgRoomInfo, map[string]interface{}{
		"room": r.Snapshot(),
	})
	env.RoomID = r.ID
	c.broadcaster.BroadcastToRoom(r.ID, env)
}

func (c *Coordinator) send(sess *session.Session, env *protocol.Envelope) {
	if err := sess.Send(env); err != nil {
		logger.Log.Warnf("Send %s to session %s failed: %v", env.MessageType, sess.ID, err)
	}
}

func (c *Coordinator) sendError(sess *session.Session, msg string) {
	c.send(sess, protocol.NewError(msg))
}

func decodeRaw(raw json.RawMessage, v interface{}) error {
	return json.Unmarshal(raw, v)
}
