// server/server.go
package server

import (
	"errors"
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/roomserver/broadcast"
	"github.com/wfunc/roomserver/coordinator"
	"github.com/wfunc/roomserver/logger"
	"github.com/wfunc/roomserver/monitor"
	"github.com/wfunc/roomserver/network"
	"github.com/wfunc/roomserver/protocol"
	"github.com/wfunc/roomserver/room"
	roomserver_rpc "github.com/wfunc/roomserver/rpc"
	"github.com/wfunc/roomserver/services"
	"github.com/wfunc/roomserver/session"
	"github.com/wfunc/roomserver/timer"
)

// metricsRefreshInterval drives the periodic gauge sync.
const metricsRefreshInterval = 5 * time.Second

type Server struct {
	addr           string
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	coordinator    *coordinator.Coordinator
	monitor        *monitor.Monitor
	rpcServer      *roomserver_rpc.Server
	timerManager   *timer.Manager
	heartbeat      time.Duration
	shutdownChan   chan struct{}
}

type Options struct {
	Addr        string
	RPCAddr     string
	MetricsAddr string
	Heartbeat   time.Duration
	Records     *services.RecordService
}

func New(opts Options) *Server {
	s := &Server{
		addr:           opts.Addr,
		roomManager:    room.NewRoomManager(),
		sessionManager: session.NewManager(),
		monitor:        monitor.NewMonitor("roomserver"),
		timerManager:   timer.NewManager(),
		heartbeat:      opts.Heartbeat,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	broadcaster := broadcast.NewRoomBroadcaster(s.roomManager, s.sessionManager)
	s.coordinator = coordinator.New(s.roomManager, s.sessionManager, broadcaster)
	s.coordinator.SetMetrics(s.monitor)
	if opts.Records != nil {
		s.coordinator.SetRecorder(opts.Records)
	}

	if opts.RPCAddr != "" {
		rpcServer, err := roomserver_rpc.NewServer(opts.RPCAddr)
		if err != nil {
			logger.Log.Fatalf("Failed to create RPC server: %v", err)
		}
		s.rpcServer = rpcServer
		rpc.Register(roomserver_rpc.NewLobbyService(s.roomManager, s.sessionManager, opts.Records))
	}

	if opts.MetricsAddr != "" {
		s.monitor.StartServer(opts.MetricsAddr)
	}

	// 定时刷新房间/在线人数指标
	s.timerManager.AddTimer(metricsRefreshInterval, metricsRefreshInterval, func() {
		s.monitor.SetActiveRooms(s.roomManager.Count())
		s.monitor.SetOnlinePlayers(s.sessionManager.Count())
	})

	return s
}

func (s *Server) Start() error {
	if s.rpcServer != nil {
		go s.rpcServer.Start()
	}

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Room server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *Server) Shutdown() {
	close(s.shutdownChan)
	s.timerManager.Stop()
	if s.rpcServer != nil {
		s.rpcServer.Stop()
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(network.NewWSConnection(conn))
}

func (s *Server) handleConnection(conn network.Connection) {
	sess := session.NewSession(uuid.New().String(), conn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", conn.RemoteAddr(), sess.ID)

	if s.heartbeat > 0 {
		conn.SetHeartbeat(s.heartbeat)
	}

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", conn.RemoteAddr(), sess.ID)
		s.sessionManager.Remove(sess.ID)
		s.coordinator.HandleDisconnect(sess)
		s.monitor.DecOnlinePlayers()
		conn.Close()
	}()

	// Immediately hand the client its connection identifier.
	welcome := protocol.NewSuccess("welcome to the room server", map[string]interface{}{
		"client_id": sess.ID,
	})
	if err := sess.Send(welcome); err != nil {
		return
	}

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			env, err := conn.Read()
			if err != nil {
				if errors.Is(err, protocol.ErrMalformed) {
					// Undecodable frame: answer and keep the connection.
					sess.Send(protocol.NewError("invalid JSON message"))
					continue
				}
				return
			}
			if s.heartbeat > 0 {
				conn.SetHeartbeat(s.heartbeat)
			}
			s.dispatch(sess, env)
		}
	}
}

// dispatch runs one envelope through the coordinator, isolating faults so a
// bad request can never take the connection or the process down.
func (s *Server) dispatch(sess *session.Session, env *protocol.Envelope) {
	start := time.Now()
	s.monitor.IncMessagesReceived()

	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("Panic handling %s from session %s: %v", env.MessageType, sess.ID, r)
			sess.Send(protocol.NewError("internal server error"))
		}
		s.monitor.ObserveMessageLatency(time.Since(start))
	}()

	s.coordinator.HandleEnvelope(sess, env)
}
