package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/roomserver/logger"
	"github.com/wfunc/roomserver/room"
	"github.com/wfunc/roomserver/services"
	"github.com/wfunc/roomserver/session"
)

// Server manages the admin RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Check if the error is due to the listener being closed.
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// LobbyService exposes operational stats and room listings over net/rpc.
type LobbyService struct {
	roomManager    *room.Manager
	sessionManager *session.Manager
	records        *services.RecordService
}

func NewLobbyService(roomManager *room.Manager, sessionManager *session.Manager, records *services.RecordService) *LobbyService {
	return &LobbyService{
		roomManager:    roomManager,
		sessionManager: sessionManager,
		records:        records,
	}
}

type StatsArgs struct{}

type StatsReply struct {
	ActiveRooms    int
	OnlineSessions int
	TotalGames     int64
	TotalPlayers   int64
}

// Stats reports live counts plus, when persistence is wired, all-time
// game totals.
func (ls *LobbyService) Stats(args *StatsArgs, reply *StatsReply) error {
	reply.ActiveRooms = ls.roomManager.Count()
	reply.OnlineSessions = ls.sessionManager.Count()

	if ls.records != nil {
		stats, err := ls.records.GameStats()
		if err != nil {
			return err
		}
		reply.TotalGames = stats.TotalGames
		reply.TotalPlayers = stats.TotalPlayers
	}
	return nil
}

type ListRoomsArgs struct{}

type ListRoomsReply struct {
	Rooms []room.Snapshot
}

// ListRooms returns snapshots of every open room.
func (ls *LobbyService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	reply.Rooms = ls.roomManager.ListOpen()
	return nil
}
