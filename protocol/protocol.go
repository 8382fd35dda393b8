// protocol/protocol.go
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMalformed marks an undecodable wire frame. The read loop answers it
// with an error envelope instead of dropping the connection.
var ErrMalformed = errors.New("malformed envelope")

// MessageType 消息类型
type MessageType string

const (
	// 连接相关
	MsgConnect    MessageType = "connect"
	MsgDisconnect MessageType = "disconnect"
	MsgHeartbeat  MessageType = "heartbeat"

	// 房间管理
	MsgCreateRoom MessageType = "create_room"
	MsgJoinRoom   MessageType = "join_room"
	MsgLeaveRoom  MessageType = "leave_room"
	MsgRoomList   MessageType = "room_list"
	MsgRoomInfo   MessageType = "room_info"

	// AI玩家管理
	MsgAddAIPlayer    MessageType = "add_ai_player"
	MsgRemoveAIPlayer MessageType = "remove_ai_player"

	// 玩家状态与操作
	MsgPlayerReady  MessageType = "player_ready"
	MsgPlayerAction MessageType = "player_action"
	MsgGameStart    MessageType = "game_start"
	MsgChatMessage  MessageType = "chat_message"

	// 系统消息
	MsgError        MessageType = "error"
	MsgSuccess      MessageType = "success"
	MsgNotification MessageType = "notification"
)

// SenderServer is the sender id stamped on every server-originated envelope.
const SenderServer = "server"

// catalog is the closed set of message types this server understands.
var catalog = map[MessageType]struct{}{
	MsgConnect: {}, MsgDisconnect: {}, MsgHeartbeat: {},
	MsgCreateRoom: {}, MsgJoinRoom: {}, MsgLeaveRoom: {},
	MsgRoomList: {}, MsgRoomInfo: {},
	MsgAddAIPlayer: {}, MsgRemoveAIPlayer: {},
	MsgPlayerReady: {}, MsgPlayerAction: {}, MsgGameStart: {}, MsgChatMessage: {},
	MsgError: {}, MsgSuccess: {}, MsgNotification: {},
}

// Known reports whether t belongs to the protocol catalog.
func Known(t MessageType) bool {
	_, ok := catalog[t]
	return ok
}

// Envelope 是客户端与服务器之间交换的统一消息格式。
// 每个WebSocket文本帧恰好承载一个JSON编码的Envelope。
type Envelope struct {
	MessageType MessageType     `json:"message_type"`
	Data        json.RawMessage `json:"data"`
	Timestamp   float64         `json:"timestamp"`
	SenderID    string          `json:"sender_id,omitempty"`
	RoomID      string          `json:"room_id,omitempty"`
}

// New builds an envelope with the current timestamp. The payload is
// marshalled eagerly so a bad payload surfaces at the call site.
func New(t MessageType, payload interface{}) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return &Envelope{
		MessageType: t,
		Data:        data,
		Timestamp:   Now(),
	}, nil
}

// MustNew is New for payloads that cannot fail to marshal (maps and
// protocol-owned structs). It panics otherwise.
func MustNew(t MessageType, payload interface{}) *Envelope {
	env, err := New(t, payload)
	if err != nil {
		panic(err)
	}
	return env
}

// NewServer builds a server-originated envelope.
func NewServer(t MessageType, payload interface{}) *Envelope {
	env := MustNew(t, payload)
	env.SenderID = SenderServer
	return env
}

// NewSuccess 构造成功消息
func NewSuccess(message string, extra map[string]interface{}) *Envelope {
	data := map[string]interface{}{"message": message}
	for k, v := range extra {
		data[k] = v
	}
	return NewServer(MsgSuccess, data)
}

// NewError 构造错误消息
func NewError(errMsg string) *Envelope {
	return NewServer(MsgError, map[string]interface{}{"error": errMsg})
}

// Decode unmarshals the envelope payload into v.
func (e *Envelope) Decode(v interface{}) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("%s: empty payload", e.MessageType)
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.MessageType, err)
	}
	return nil
}

// Unmarshal parses one wire frame into an envelope.
func Unmarshal(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &env, nil
}

// Marshal encodes the envelope for the wire.
func (e *Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Now returns the wire timestamp, unix seconds with sub-second precision.
func Now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}
