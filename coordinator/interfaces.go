package coordinator

import (
	"github.com/wfunc/roomserver/protocol"
	"github.com/wfunc/roomserver/room"
)

// Broadcaster delivers one envelope to a room's members. Defined here, at
// the consumer, so tests can substitute a double without the broadcast
// package.
type Broadcaster interface {
	BroadcastToRoom(roomID string, env *protocol.Envelope) error
	BroadcastToRoomExcept(roomID, exceptID string, env *protocol.Envelope) error
}

// Recorder receives game-start records for persistence. Implementations
// must not block the caller; failures are theirs to log.
type Recorder interface {
	RecordGameStart(snap room.Snapshot, mapFile string)
}

// Metrics is the slice of the monitor the coordinator reports to.
type Metrics interface {
	IncGamesStarted()
}
