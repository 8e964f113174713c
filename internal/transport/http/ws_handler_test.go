package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"quizwise-service/internal/app"
	"quizwise-service/internal/domain"

	"github.com/gorilla/websocket"
)

type wsEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func TestWSProgressStream(t *testing.T) {
	server := newTestServer(&stubGenerator{quiz: sampleGeneratedQuiz()})
	defer server.Close()

	resp := postJSON(t, server.URL+"/api/quizzes/topic", map[string]any{"topic": "X"})
	var started struct {
		SessionID string `json:"sessionId"`
	}
	decodeBody(t, resp, &started)

	conn := dialWS(t, server.URL, started.SessionID)
	defer conn.Close()

	// The first message is the initial progress snapshot.
	initial := readProgress(t, conn, "progress")
	if initial.State != domain.StateInProgress || initial.Answered != 0 || initial.TotalQuestions != 3 {
		t.Fatalf("unexpected initial progress: %+v", initial)
	}

	// Answering over the socket yields an ack plus a broadcast update.
	writeWS(t, conn, map[string]any{
		"type":    "answer",
		"payload": map[string]any{"index": 0, "answer": "B"},
	})
	sawAck := false
	sawAnswered := false
	for i := 0; i < 4 && !(sawAck && sawAnswered); i++ {
		envelope, progress := readNext(t, conn)
		switch envelope.Type {
		case "answerSaved":
			sawAck = true
			if progress.Answered != 1 {
				t.Fatalf("ack should reflect saved answer: %+v", progress)
			}
		case "progress":
			if progress.Answered == 1 {
				sawAnswered = true
			}
		case "tick":
			// Ticks may interleave; ignore them.
		default:
			t.Fatalf("unexpected message type %q", envelope.Type)
		}
	}
	if !sawAck || !sawAnswered {
		t.Fatalf("expected answerSaved ack and progress broadcast, got ack=%v broadcast=%v", sawAck, sawAnswered)
	}
}

func TestWSRejectsUnknownMessageType(t *testing.T) {
	server := newTestServer(&stubGenerator{quiz: sampleGeneratedQuiz()})
	defer server.Close()

	resp := postJSON(t, server.URL+"/api/quizzes/topic", map[string]any{"topic": "X"})
	var started struct {
		SessionID string `json:"sessionId"`
	}
	decodeBody(t, resp, &started)

	conn := dialWS(t, server.URL, started.SessionID)
	defer conn.Close()
	readProgress(t, conn, "progress") // drain the initial snapshot

	writeWS(t, conn, map[string]any{"type": "subscribe"})
	for i := 0; i < 4; i++ {
		envelope, _ := readNext(t, conn)
		if envelope.Type == "error" {
			return
		}
	}
	t.Fatalf("expected error envelope for unsupported type")
}

func TestWSUnknownSessionGetsError(t *testing.T) {
	server := newTestServer(&stubGenerator{quiz: sampleGeneratedQuiz()})
	defer server.Close()

	conn := dialWS(t, server.URL, "missing")
	defer conn.Close()

	envelope, _ := readNext(t, conn)
	if envelope.Type != "error" {
		t.Fatalf("expected error envelope, got %q", envelope.Type)
	}
}

func TestWSRequiresSessionID(t *testing.T) {
	server := newTestServer(&stubGenerator{quiz: sampleGeneratedQuiz()})
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatalf("expected dial to fail without sessionId")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 handshake rejection, got %+v", resp)
	}
}

func dialWS(t *testing.T, baseURL, sessionID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + "/ws?sessionId=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	return conn
}

func writeWS(t *testing.T, conn *websocket.Conn, msg map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write ws: %v", err)
	}
}

func readNext(t *testing.T, conn *websocket.Conn) (wsEnvelope, app.Progress) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var envelope wsEnvelope
	if err := conn.ReadJSON(&envelope); err != nil {
		t.Fatalf("read ws: %v", err)
	}
	var progress app.Progress
	if envelope.Type == "progress" || envelope.Type == "tick" || envelope.Type == "answerSaved" {
		if err := json.Unmarshal(envelope.Payload, &progress); err != nil {
			t.Fatalf("decode progress: %v", err)
		}
	}
	return envelope, progress
}

func readProgress(t *testing.T, conn *websocket.Conn, wantType string) app.Progress {
	t.Helper()
	envelope, progress := readNext(t, conn)
	if envelope.Type != wantType {
		t.Fatalf("expected %q message, got %q", wantType, envelope.Type)
	}
	return progress
}
