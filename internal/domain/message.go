package domain

// Sender identifica quien escribio un mensaje.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message es una entrada de la conversacion. Nunca se edita ni se borra.
type Message struct {
	ID     int64  `json:"id"`
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
}
