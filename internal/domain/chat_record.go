package domain

import "time"

// Turn es un intercambio persistido: el texto del usuario y la respuesta del asistente.
type Turn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant,omitempty"`
	Time      string `json:"time"`
}

// TurnTimeLayout es el formato con el que se guarda Turn.Time.
const TurnTimeLayout = "2006-01-02 15:04:05"

// ChatRecord es la sesion tal como la guarda el servicio.
type ChatRecord struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Turns     []Turn    `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Session aplana los turnos en mensajes alternados usuario/asistente.
// Los ids son posicionales; solo tienen que ser unicos dentro de la sesion.
func (r ChatRecord) Session() Session {
	messages := make([]Message, 0, len(r.Turns)*2)
	var next int64
	for _, turn := range r.Turns {
		next++
		messages = append(messages, Message{ID: next, Text: turn.User, Sender: SenderUser})
		if turn.Assistant == "" {
			continue
		}
		next++
		messages = append(messages, Message{ID: next, Text: turn.Assistant, Sender: SenderAssistant})
	}
	return Session{ID: r.ID, Title: r.Title, Messages: messages}
}
