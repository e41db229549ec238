package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	chatWSWriteWait = 10 * time.Second
	chatWSPongWait  = 60 * time.Second
	chatWSPingEvery = (chatWSPongWait * 9) / 10
)

var chatWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type chatWSInbound struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Language string `json:"language,omitempty"`
}

type chatWSOutbound struct {
	Type    string `json:"type"`
	Slot    string `json:"slot,omitempty"`
	Index   int    `json:"index,omitempty"`
	Text    string `json:"text,omitempty"`
	Message string `json:"message,omitempty"`
}

// handleChatWS streams transcript updates over a websocket. The client
// sends {"type":"message"} or {"type":"translate"} frames; the server
// pushes "fragment" frames carrying the accumulated slot text, then a
// terminal "done" or "error" frame per stream.
func (a *API) handleChatWS(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionFromRequest(w, r)
	if !ok {
		return
	}

	conn, err := chatWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(chatWSPongWait)); err != nil {
		a.logger.Printf("chat ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(chatWSPongWait))
	})

	writeCh := make(chan chatWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(chatWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	updates, unwatch := s.Watch()
	defer unwatch()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case u, ok := <-updates:
				if !ok {
					return
				}
				switch {
				case u.Failed:
					pushChatWS(ctx, writeCh, chatWSOutbound{
						Type:    "error",
						Slot:    u.Slot,
						Index:   u.Index,
						Message: u.Text,
					})
				case u.Done:
					pushChatWS(ctx, writeCh, chatWSOutbound{
						Type:  "done",
						Slot:  u.Slot,
						Index: u.Index,
					})
				default:
					pushChatWS(ctx, writeCh, chatWSOutbound{
						Type:  "fragment",
						Slot:  u.Slot,
						Index: u.Index,
						Text:  u.Text,
					})
				}
			}
		}
	}()

	for {
		var in chatWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(chatWSPongWait))

		switch in.Type {
		case "message":
			if err := s.SendMessage(in.Text); err != nil {
				pushChatWS(ctx, writeCh, chatWSOutbound{Type: "error", Slot: "chat", Message: err.Error()})
			}
		case "translate":
			if err := s.Translate(in.Text, in.Language); err != nil {
				pushChatWS(ctx, writeCh, chatWSOutbound{Type: "error", Slot: "translation", Message: err.Error()})
			}
		case "ping":
			pushChatWS(ctx, writeCh, chatWSOutbound{Type: "pong"})
		default:
			pushChatWS(ctx, writeCh, chatWSOutbound{Type: "error", Message: "unknown message type"})
		}
	}
}

func pushChatWS(ctx context.Context, ch chan<- chatWSOutbound, out chatWSOutbound) {
	select {
	case <-ctx.Done():
	case ch <- out:
	}
}
