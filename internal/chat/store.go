package chat

import (
	"sync"
	"time"

	"plotchat/internal/domain"
)

// Store es la fuente de verdad de los chats que renderiza la UI.
// Lo crea quien lo usa; no hay instancia global.
type Store struct {
	mu        sync.RWMutex
	sessions  []domain.Session
	selected  int64
	hasSel    bool
	titleMax  int
	now       func() time.Time
	listeners []func()
}

// NewStore crea un store vacio. now puede ser nil.
func NewStore(titleMax int, now func() time.Time) *Store {
	if titleMax <= 0 {
		titleMax = DefaultTitleLength
	}
	if now == nil {
		now = time.Now
	}
	return &Store{titleMax: titleMax, now: now}
}

// OnChange registra fn para que se invoque despues de cada mutacion.
func (s *Store) OnChange(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) List() []domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Session, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.Clone()
	}
	return out
}

func (s *Store) Get(id int64) (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Session{}, false
	}
	return s.sessions[idx].Clone(), true
}

// Create agrega un chat local con id basado en el reloj. No lo selecciona.
func (s *Store) Create(initialTitle string) domain.Session {
	s.mu.Lock()
	id := s.now().UnixMilli()
	for s.indexOf(id) >= 0 {
		id++
	}
	sess := domain.Session{ID: id, Title: initialTitle, Messages: []domain.Message{}}
	s.sessions = append(s.sessions, sess)
	s.mu.Unlock()

	s.notify()
	return sess.Clone()
}

// Append agrega msg al chat sessionID. El primer mensaje fija el titulo.
// Devuelve false, sin tocar nada, si el chat no existe.
func (s *Store) Append(sessionID int64, msg domain.Message) bool {
	s.mu.Lock()
	idx := s.indexOf(sessionID)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	sess := &s.sessions[idx]
	if len(sess.Messages) == 0 {
		sess.Title = DeriveTitle(msg.Text, s.titleMax)
	}
	sess.Messages = append(sess.Messages, msg)
	s.mu.Unlock()

	s.notify()
	return true
}

// ReplaceAll reemplaza la coleccion completa con lo que devolvio el servidor.
// Los chats locales que no esten en sessions se pierden.
func (s *Store) ReplaceAll(sessions []domain.Session) {
	s.mu.Lock()
	next := make([]domain.Session, 0, len(sessions))
	seen := make(map[int64]struct{}, len(sessions))
	for _, sess := range sessions {
		if _, dup := seen[sess.ID]; dup {
			continue
		}
		seen[sess.ID] = struct{}{}
		c := sess.Clone()
		if c.Messages == nil {
			c.Messages = []domain.Message{}
		}
		next = append(next, c)
	}
	s.sessions = next
	if _, ok := seen[s.selected]; s.hasSel && !ok {
		s.selected, s.hasSel = 0, false
	}
	s.mu.Unlock()

	s.notify()
}

// Promote cambia el id local de un chat por el id que asigno el servidor.
func (s *Store) Promote(oldID, newID int64) bool {
	s.mu.Lock()
	idx := s.indexOf(oldID)
	if idx < 0 || oldID == newID || s.indexOf(newID) >= 0 {
		s.mu.Unlock()
		return false
	}
	s.sessions[idx].ID = newID
	if s.hasSel && s.selected == oldID {
		s.selected = newID
	}
	s.mu.Unlock()

	s.notify()
	return true
}

// Select marca el chat id como activo. Un id desconocido no cambia nada.
func (s *Store) Select(id int64) bool {
	s.mu.Lock()
	if s.indexOf(id) < 0 {
		s.mu.Unlock()
		return false
	}
	s.selected, s.hasSel = id, true
	s.mu.Unlock()

	s.notify()
	return true
}

// ClearSelection deja la UI sin chat abierto (pantalla de bienvenida).
func (s *Store) ClearSelection() {
	s.mu.Lock()
	s.selected, s.hasSel = 0, false
	s.mu.Unlock()

	s.notify()
}

func (s *Store) SelectedID() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected, s.hasSel
}

func (s *Store) Selected() (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasSel {
		return domain.Session{}, false
	}
	idx := s.indexOf(s.selected)
	if idx < 0 {
		return domain.Session{}, false
	}
	return s.sessions[idx].Clone(), true
}

func (s *Store) indexOf(id int64) int {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) notify() {
	s.mu.RLock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}
