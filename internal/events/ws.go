package events

import (
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/gobwas/ws"
)

// maxClientFrame bounds control/data frames accepted from stream clients.
const maxClientFrame = 64 << 10

// WSHandler returns an http.HandlerFunc that streams events over a
// WebSocket, one JSON text frame per event. Clients may filter sessions via
// ?symbols=BTCUSD,ETHUSD. Frames sent by the client are ignored apart from
// ping and close.
func WSHandler(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := symbolFilter(r.URL.Query().Get("symbols"))

		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			slog.Debug("event stream upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		id, ch := broker.Subscribe()
		defer broker.Unsubscribe(id)

		out := &frameWriter{conn: conn}
		done := make(chan struct{})
		go func() {
			defer close(done)
			readClientFrames(conn, out)
		}()

		for {
			select {
			case <-done:
				return
			case evt, ok := <-ch:
				if !ok {
					_ = out.write(ws.NewCloseFrame(ws.NewCloseFrameBody(ws.StatusGoingAway, "broker closed")))
					return
				}
				if filter != nil && !filter[evt.Symbol] {
					continue
				}
				data, err := json.Marshal(evt)
				if err != nil {
					continue
				}
				if err := out.write(ws.NewTextFrame(data)); err != nil {
					slog.Debug("event stream write failed", "error", err)
					return
				}
			}
		}
	}
}

// frameWriter serializes whole frames onto the connection so control replies
// from the reader never interleave with event frames.
type frameWriter struct {
	mu   sync.Mutex
	conn net.Conn
}

func (f *frameWriter) write(frame ws.Frame) error {
	bts, err := ws.CompileFrame(frame)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, err = f.conn.Write(bts)
	return err
}

func readClientFrames(conn net.Conn, out *frameWriter) {
	for {
		h, err := ws.ReadHeader(conn)
		if err != nil {
			return
		}
		if h.Length > maxClientFrame {
			_ = out.write(ws.NewCloseFrame(ws.NewCloseFrameBody(ws.StatusMessageTooBig, "")))
			return
		}
		payload := make([]byte, h.Length)
		if _, err := io.ReadFull(conn, payload); err != nil {
			return
		}
		if h.Masked {
			ws.Cipher(payload, h.Mask, 0)
		}
		switch h.OpCode {
		case ws.OpPing:
			if err := out.write(ws.NewPongFrame(payload)); err != nil {
				return
			}
		case ws.OpClose:
			_ = out.write(ws.NewCloseFrame(ws.NewCloseFrameBody(ws.StatusNormalClosure, "")))
			return
		}
	}
}
