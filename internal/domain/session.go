package domain

// Session es un chat con titulo y su lista ordenada de mensajes.
type Session struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
}

// Clone devuelve una copia que no comparte el slice de mensajes.
func (s Session) Clone() Session {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return out
}
