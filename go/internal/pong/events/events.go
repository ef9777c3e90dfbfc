package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownType is returned by Decode for envelopes whose type is not in the catalogue
var ErrUnknownType = errors.New("unknown message type")

// Type represents the type of a match message on the wire
type Type string

const (
	TypeKeyDown   Type = "keyDown"
	TypeKeyUp     Type = "keyUp"
	TypeStartGame Type = "startGame"
	TypeResetGame Type = "resetGame"
	TypeCollision Type = "collision"
	TypePoint     Type = "point"
	TypeResetBall Type = "resetBall"
	TypeRoomFull  Type = "roomFull"
	TypeWelcome   Type = "welcome"
)

// ServerOnly reports whether the type may only be sent by the relay
func (t Type) ServerOnly() bool {
	return t == TypeRoomFull || t == TypeWelcome
}

// Envelope is the JSON frame every message travels in
type Envelope struct {
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Player is an absolute seat identity, shared by both peers of a match
type Player string

const (
	Player1 Player = "player1"
	Player2 Player = "player2"
)

// Valid reports whether p names one of the two seats
func (p Player) Valid() bool {
	return p == Player1 || p == Player2
}

// Opponent returns the other seat
func (p Player) Opponent() Player {
	if p == Player1 {
		return Player2
	}
	return Player1
}

// BallState is the reported position and velocity of the ball
type BallState struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Dx   float64 `json:"dx"`
	Dy   float64 `json:"dy"`
	Size float64 `json:"size"`
}

// Message is the closed set of match messages. Only types in this package implement it.
type Message interface {
	Type() Type
	dispatch(h Handler)
}

// KeyDown is sent when the local player begins pressing up or down
type KeyDown struct {
	MatchID string `json:"matchId"`
	Key     string `json:"key"`
}

// KeyUp is sent when the local player releases a control, with the paddle y at release
type KeyUp struct {
	MatchID string  `json:"matchId"`
	Key     string  `json:"key"`
	Y       float64 `json:"y"`
}

// StartGame requests a serve and entering play
type StartGame struct {
	MatchID string `json:"matchId"`
}

// ResetGame forces scores and ball back to zero
type ResetGame struct {
	MatchID string `json:"matchId"`
}

// Collision carries the reporter's post-collision ball state
type Collision struct {
	MatchID string    `json:"matchId"`
	Ball    BallState `json:"ball"`
}

// Point credits one seat with a point
type Point struct {
	MatchID string `json:"matchId"`
	Player  Player `json:"player"`
}

// ResetBall carries the reporter's serve state after a reset
type ResetBall struct {
	MatchID string    `json:"matchId"`
	Ball    BallState `json:"ball"`
}

// RoomFull is sent by the relay to a rejected connection only. Its payload is a bare string.
type RoomFull struct {
	Reason string
}

// Welcome is sent by the relay to a joiner with its seat and the room size after joining
type Welcome struct {
	MatchID string `json:"matchId"`
	Player  Player `json:"player"`
	Members int    `json:"members"`
}

func (KeyDown) Type() Type   { return TypeKeyDown }
func (KeyUp) Type() Type     { return TypeKeyUp }
func (StartGame) Type() Type { return TypeStartGame }
func (ResetGame) Type() Type { return TypeResetGame }
func (Collision) Type() Type { return TypeCollision }
func (Point) Type() Type     { return TypePoint }
func (ResetBall) Type() Type { return TypeResetBall }
func (RoomFull) Type() Type  { return TypeRoomFull }
func (Welcome) Type() Type   { return TypeWelcome }

// Encode wraps a message in its envelope and marshals it
func Encode(m Message) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if rf, ok := m.(RoomFull); ok {
		data, err = json.Marshal(rf.Reason)
	} else {
		data, err = json.Marshal(m)
	}
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", m.Type(), err)
	}

	out, err := json.Marshal(Envelope{Type: m.Type(), Data: data})
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", m.Type(), err)
	}
	return out, nil
}

// PeekType returns the envelope type without decoding the payload
func PeekType(raw []byte) (Type, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("unmarshal envelope: %w", err)
	}
	return env.Type, nil
}

// Decode parses an envelope into its concrete message
func Decode(raw []byte) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	switch env.Type {
	case TypeKeyDown:
		return decodePayload[KeyDown](env)
	case TypeKeyUp:
		return decodePayload[KeyUp](env)
	case TypeStartGame:
		return decodePayload[StartGame](env)
	case TypeResetGame:
		return decodePayload[ResetGame](env)
	case TypeCollision:
		return decodePayload[Collision](env)
	case TypePoint:
		return decodePayload[Point](env)
	case TypeResetBall:
		return decodePayload[ResetBall](env)
	case TypeWelcome:
		return decodePayload[Welcome](env)
	case TypeRoomFull:
		var reason string
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &reason); err != nil {
				return nil, fmt.Errorf("unmarshal roomFull payload: %w", err)
			}
		}
		return RoomFull{Reason: reason}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

func decodePayload[T Message](env Envelope) (Message, error) {
	var payload T
	if len(env.Data) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
	}
	return payload, nil
}
