package events

// Handler receives one typed callback per message kind. Adding a kind to the catalogue
// means adding a method here, so every implementation must handle it.
type Handler interface {
	OnKeyDown(KeyDown)
	OnKeyUp(KeyUp)
	OnStartGame(StartGame)
	OnResetGame(ResetGame)
	OnCollision(Collision)
	OnPoint(Point)
	OnResetBall(ResetBall)
	OnRoomFull(RoomFull)
	OnWelcome(Welcome)
}

// Dispatch routes m to the matching Handler method
func Dispatch(h Handler, m Message) {
	m.dispatch(h)
}

func (m KeyDown) dispatch(h Handler)   { h.OnKeyDown(m) }
func (m KeyUp) dispatch(h Handler)     { h.OnKeyUp(m) }
func (m StartGame) dispatch(h Handler) { h.OnStartGame(m) }
func (m ResetGame) dispatch(h Handler) { h.OnResetGame(m) }
func (m Collision) dispatch(h Handler) { h.OnCollision(m) }
func (m Point) dispatch(h Handler)     { h.OnPoint(m) }
func (m ResetBall) dispatch(h Handler) { h.OnResetBall(m) }
func (m RoomFull) dispatch(h Handler)  { h.OnRoomFull(m) }
func (m Welcome) dispatch(h Handler)   { h.OnWelcome(m) }
