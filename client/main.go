package main

import (
	"bufio"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type envelope struct {
	MessageType string                 `json:"message_type"`
	Data        map[string]interface{} `json:"data"`
	Timestamp   float64                `json:"timestamp"`
	SenderID    string                 `json:"sender_id,omitempty"`
	RoomID      string                 `json:"room_id,omitempty"`
}

// send formats and sends one envelope to the server.
func send(c *websocket.Conn, msgType string, data map[string]interface{}) error {
	env := envelope{
		MessageType: msgType,
		Data:        data,
		Timestamp:   float64(time.Now().UnixNano()) / 1e9,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, payload)
}

func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: "localhost:8765", Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			log.Printf("<- RECV: %s", string(message))
		}
	}()

	name := "player"
	if len(os.Args) > 1 {
		name = os.Args[1]
	}

	log.Println("Commands: create <room> [max] | join <room_id> | list | ready | unready | ai | start | chat <text> | leave")

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			fields := strings.Fields(strings.TrimSpace(text))
			if len(fields) == 0 {
				continue
			}

			var err error
			switch fields[0] {
			case "create":
				if len(fields) < 2 {
					log.Println("usage: create <room> [max]")
					continue
				}
				max := 4
				if len(fields) > 2 {
					if n, convErr := strconv.Atoi(fields[2]); convErr == nil {
						max = n
					}
				}
				err = send(c, "create_room", map[string]interface{}{
					"room_name": fields[1], "max_players": max, "player_name": name,
				})
			case "join":
				if len(fields) < 2 {
					log.Println("usage: join <room_id>")
					continue
				}
				err = send(c, "join_room", map[string]interface{}{
					"room_id": fields[1], "player_name": name,
				})
			case "list":
				err = send(c, "room_list", map[string]interface{}{})
			case "ready":
				err = send(c, "player_ready", map[string]interface{}{"ready": true})
			case "unready":
				err = send(c, "player_ready", map[string]interface{}{"ready": false})
			case "ai":
				err = send(c, "add_ai_player", map[string]interface{}{"difficulty": "简单"})
			case "start":
				err = send(c, "player_action", map[string]interface{}{
					"action": "start_game",
					"data":   map[string]interface{}{"map_file": "1.json"},
				})
			case "chat":
				err = send(c, "chat_message", map[string]interface{}{
					"content": strings.Join(fields[1:], " "),
				})
			case "leave":
				err = send(c, "leave_room", map[string]interface{}{})
			default:
				log.Printf("unknown command: %s", fields[0])
				continue
			}
			if err != nil {
				log.Println("Write error:", err)
				return
			}
		}
	}
}
