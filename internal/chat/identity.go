package chat

import (
	"strings"

	"plotchat/internal/domain"
)

// DefaultEphemeralThreshold separa ids asignados por el servidor (chicos)
// de ids locales basados en el reloj.
const DefaultEphemeralThreshold int64 = 1000

// SendRequest es el cuerpo de POST /generate-sentence/.
// Lleva exactamente uno de SessionID o SessionTitle.
type SendRequest struct {
	Input        string  `json:"input"`
	SessionID    *int64  `json:"session_id,omitempty"`
	SessionTitle *string `json:"session_title,omitempty"`
}

// Persisted indica si el request apunta a una sesion que ya existe en el servidor.
func (r SendRequest) Persisted() bool {
	return r.SessionID != nil
}

// IdentityPolicy decide si un chat es local o persistido y arma el request.
type IdentityPolicy struct {
	Threshold int64
}

func NewIdentityPolicy(threshold int64) IdentityPolicy {
	if threshold <= 0 {
		threshold = DefaultEphemeralThreshold
	}
	return IdentityPolicy{Threshold: threshold}
}

// Ephemeral reporta si id todavia no lo conoce el servidor.
func (p IdentityPolicy) Ephemeral(id int64) bool {
	return id > p.Threshold
}

// Request arma el request para enviar text en session. Para un chat local
// el titulo es el actual; si box esta vacio (un click de FAQ, por ejemplo)
// se usa fallback tal cual.
func (p IdentityPolicy) Request(session domain.Session, text, box, fallback string) SendRequest {
	req := SendRequest{Input: text}
	if !p.Ephemeral(session.ID) {
		id := session.ID
		req.SessionID = &id
		return req
	}
	title := session.Title
	if strings.TrimSpace(box) == "" {
		title = fallback
	}
	req.SessionTitle = &title
	return req
}
