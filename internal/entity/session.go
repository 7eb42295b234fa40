package entity

// Session is the transient state of one live connection. It only refers to a
// room by code and is never persisted.
type Session struct {
	ID       string
	Name     string
	RoomCode string
	Symbol   string
}

func NewSession(id string) Session {
	return Session{ID: id}
}

func (that Session) InRoom() bool {
	return that.RoomCode != ""
}

// Attach returns a copy of the session bound to a room seat.
func (that Session) Attach(roomCode string, player *Player) Session {
	that.RoomCode = roomCode
	that.Name = player.Name
	that.Symbol = player.Symbol
	return that
}

// Detach returns a copy of the session without any room association.
func (that Session) Detach() Session {
	that.RoomCode = ""
	that.Symbol = ""
	return that
}
