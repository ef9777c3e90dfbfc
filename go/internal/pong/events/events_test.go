package events

import (
	"encoding/json"
	"errors"
	"testing"
)

type recordingHandler struct {
	calls []string
}

func (r *recordingHandler) OnKeyDown(KeyDown)     { r.calls = append(r.calls, "keyDown") }
func (r *recordingHandler) OnKeyUp(KeyUp)         { r.calls = append(r.calls, "keyUp") }
func (r *recordingHandler) OnStartGame(StartGame) { r.calls = append(r.calls, "startGame") }
func (r *recordingHandler) OnResetGame(ResetGame) { r.calls = append(r.calls, "resetGame") }
func (r *recordingHandler) OnCollision(Collision) { r.calls = append(r.calls, "collision") }
func (r *recordingHandler) OnPoint(Point)         { r.calls = append(r.calls, "point") }
func (r *recordingHandler) OnResetBall(ResetBall) { r.calls = append(r.calls, "resetBall") }
func (r *recordingHandler) OnRoomFull(RoomFull)   { r.calls = append(r.calls, "roomFull") }
func (r *recordingHandler) OnWelcome(Welcome)     { r.calls = append(r.calls, "welcome") }

func TestDecodeBrowserPayload(t *testing.T) {
	raw := []byte(`{"type":"collision","data":{"matchId":"42","ball":{"x":770,"y":120.5,"dx":-5,"dy":2,"size":10}}}`)

	msg, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	c, ok := msg.(Collision)
	if !ok {
		t.Fatalf("Decode() returned %T, want Collision", msg)
	}
	want := BallState{X: 770, Y: 120.5, Dx: -5, Dy: 2, Size: 10}
	if c.MatchID != "42" || c.Ball != want {
		t.Fatalf("Decode() = %+v, want match 42 and ball %+v", c, want)
	}
}

func TestRoomFullPayloadIsString(t *testing.T) {
	raw, err := Encode(RoomFull{Reason: "match 42 is full"})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.Type != TypeRoomFull {
		t.Fatalf("envelope type = %q, want %q", env.Type, TypeRoomFull)
	}
	if string(env.Data) != `"match 42 is full"` {
		t.Fatalf("envelope data = %s, want a JSON string", env.Data)
	}

	msg, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if rf, ok := msg.(RoomFull); !ok || rf.Reason != "match 42 is full" {
		t.Fatalf("Decode() = %#v", msg)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"chat","data":{}}`))
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("Decode() error = %v, want ErrUnknownType", err)
	}

	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Fatalf("Decode() of garbage should fail")
	}
}

func TestDispatchRoutesEachKind(t *testing.T) {
	msgs := []Message{
		KeyDown{}, KeyUp{}, StartGame{}, ResetGame{}, Collision{},
		Point{}, ResetBall{}, RoomFull{}, Welcome{},
	}

	h := &recordingHandler{}
	for _, m := range msgs {
		Dispatch(h, m)
	}

	if len(h.calls) != len(msgs) {
		t.Fatalf("got %d calls, want %d", len(h.calls), len(msgs))
	}
	for i, m := range msgs {
		if h.calls[i] != string(m.Type()) {
			t.Fatalf("call %d = %s, want %s", i, h.calls[i], m.Type())
		}
	}
}

func TestPlayerOpponent(t *testing.T) {
	if Player1.Opponent() != Player2 || Player2.Opponent() != Player1 {
		t.Fatalf("Opponent() is not symmetric")
	}
	if Player("player3").Valid() {
		t.Fatalf("player3 should not be a valid seat")
	}
}

func TestServerOnlyTypes(t *testing.T) {
	for _, typ := range []Type{TypeRoomFull, TypeWelcome} {
		if !typ.ServerOnly() {
			t.Fatalf("%s should be server only", typ)
		}
	}
	if TypePoint.ServerOnly() {
		t.Fatalf("point is sent by peers")
	}
}
