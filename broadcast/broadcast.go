// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/wfunc/roomserver/logger"
	"github.com/wfunc/roomserver/protocol"
	"github.com/wfunc/roomserver/room"
	"github.com/wfunc/roomserver/session"
)

var ErrRoomNotFound = errors.New("room not found")

// 基于房间的广播器。每次广播先在房间锁内取成员快照，发送在锁外进行。
type RoomBroadcaster struct {
	roomManager    *room.Manager
	sessionManager *session.Manager
}

func NewRoomBroadcaster(roomManager *room.Manager, sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		roomManager:    roomManager,
		sessionManager: sessionManager,
	}
}

// BroadcastToRoom delivers env to every human member of the room. A member
// whose send fails is logged and skipped; the broadcast is still considered
// delivered because the room mutation it reports has already happened.
func (b *RoomBroadcaster) BroadcastToRoom(roomID string, env *protocol.Envelope) error {
	return b.broadcast(roomID, "", env)
}

// BroadcastToRoomExcept is BroadcastToRoom minus one recipient, used for
// relaying a member's own action to the rest of the room.
func (b *RoomBroadcaster) BroadcastToRoomExcept(roomID, exceptID string, env *protocol.Envelope) error {
	return b.broadcast(roomID, exceptID, env)
}

func (b *RoomBroadcaster) broadcast(roomID, exceptID string, env *protocol.Envelope) error {
	r, exists := b.roomManager.GetRoom(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	for _, clientID := range r.HumanIDs() {
		if clientID == exceptID {
			continue
		}
		sess, ok := b.sessionManager.Get(clientID)
		if !ok {
			continue
		}
		if err := sess.Send(env); err != nil {
			logger.Log.Warnf("Broadcast to %s in room %s failed: %v", clientID, roomID, err)
		}
	}
	return nil
}
