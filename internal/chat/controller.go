package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"plotchat/internal/domain"
)

// DefaultPlaceholderTitle es el titulo de un chat antes de su primer mensaje.
const DefaultPlaceholderTitle = "New Chat"

// Remote son las dos operaciones remotas que usa el nucleo del chat.
type Remote interface {
	FetchSessions(ctx context.Context) ([]domain.Session, error)
	SendMessage(ctx context.Context, req SendRequest) (Reply, error)
}

// Reply es la respuesta del asistente. SessionID es 0 cuando el servidor no
// informo el id de la sesion.
type Reply struct {
	Text      string
	SessionID int64
}

var (
	ErrEmptyInput = errors.New("empty input")
	ErrNoSession  = errors.New("session not found")
)

// NetworkError envuelve una falla de alguna operacion remota.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Options configura un Controller. Los ceros toman valores por defecto.
type Options struct {
	PlaceholderTitle string
	FAQs             []string
	Now              func() time.Time
}

// Outgoing es un envio ya aplicado al store que espera respuesta del servidor.
type Outgoing struct {
	SessionID int64
	Message   domain.Message
	Request   SendRequest
}

// Outcome es el resultado de un envio completo.
type Outcome struct {
	SessionID int64
	User      domain.Message
	Reply     domain.Message
}

// Controller normaliza las acciones del usuario (texto libre, FAQ, selector
// de grafico) en un unico camino de envio.
type Controller struct {
	logger      *zap.Logger
	store       *Store
	remote      Remote
	policy      IdentityPolicy
	placeholder string
	faqs        []string
	now         func() time.Time

	mu        sync.Mutex
	draft     string
	faqHidden map[int64]bool
	promoted  map[int64]int64
	lastID    int64
}

func NewController(logger *zap.Logger, store *Store, remote Remote, policy IdentityPolicy, opts Options) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PlaceholderTitle == "" {
		opts.PlaceholderTitle = DefaultPlaceholderTitle
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if policy.Threshold <= 0 {
		policy = NewIdentityPolicy(0)
	}
	faqs := make([]string, 0, len(opts.FAQs))
	for _, f := range opts.FAQs {
		if f = strings.TrimSpace(f); f != "" {
			faqs = append(faqs, f)
		}
	}
	return &Controller{
		logger:      logger,
		store:       store,
		remote:      remote,
		policy:      policy,
		placeholder: opts.PlaceholderTitle,
		faqs:        faqs,
		now:         opts.Now,
		faqHidden:   make(map[int64]bool),
		promoted:    make(map[int64]int64),
	}
}

func (c *Controller) Store() *Store {
	return c.store
}

func (c *Controller) Policy() IdentityPolicy {
	return c.policy
}

// Hydrate carga los chats del servidor. Ante un error el store queda igual.
func (c *Controller) Hydrate(ctx context.Context) error {
	sessions, err := c.remote.FetchSessions(ctx)
	if err != nil {
		c.logger.Warn("fetch sessions failed", zap.Error(err))
		return &NetworkError{Op: "fetch sessions", Err: err}
	}
	c.store.ReplaceAll(sessions)
	c.logger.Info("sessions hydrated", zap.Int("count", len(sessions)))
	return nil
}

// NewChat crea un chat local y lo selecciona.
func (c *Controller) NewChat() domain.Session {
	sess := c.store.Create(c.placeholder)
	c.store.Select(sess.ID)
	return sess
}

func (c *Controller) Select(id int64) bool {
	return c.store.Select(id)
}

func (c *Controller) SetDraft(text string) {
	c.mu.Lock()
	c.draft = text
	c.mu.Unlock()
}

func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

func (c *Controller) FAQs() []string {
	out := make([]string, len(c.faqs))
	copy(out, c.faqs)
	return out
}

// FAQVisible indica si se muestra el panel de preguntas frecuentes: hay un
// chat abierto, sin mensajes, y el panel no se oculto para ese chat.
func (c *Controller) FAQVisible() bool {
	if len(c.faqs) == 0 {
		return false
	}
	sess, ok := c.store.Selected()
	if !ok || len(sess.Messages) > 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.faqHidden[sess.ID]
}

// PrepareSubmit envia el borrador actual.
func (c *Controller) PrepareSubmit() (Outgoing, error) {
	draft := c.Draft()
	out, err := c.prepare(draft, draft, draft)
	if err != nil {
		return Outgoing{}, err
	}
	c.SetDraft("")
	return out, nil
}

// PrepareFAQ envia label como si el usuario lo hubiera escrito y oculta el
// panel de FAQ para el chat.
func (c *Controller) PrepareFAQ(label string) (Outgoing, error) {
	out, err := c.prepare(label, c.Draft(), label)
	if err != nil {
		return Outgoing{}, err
	}
	c.mu.Lock()
	c.faqHidden[out.SessionID] = true
	c.draft = ""
	c.mu.Unlock()
	return out, nil
}

// PreparePlot envia la opcion elegida en el selector de graficos.
func (c *Controller) PreparePlot(label string) (Outgoing, error) {
	return c.prepare(label, c.Draft(), label)
}

func (c *Controller) prepare(text, box, fallback string) (Outgoing, error) {
	if strings.TrimSpace(text) == "" {
		return Outgoing{}, ErrEmptyInput
	}

	sess, ok := c.store.Selected()
	if !ok {
		sess = c.NewChat()
	}

	msg := domain.Message{ID: c.nextID(), Text: text, Sender: domain.SenderUser}
	if !c.store.Append(sess.ID, msg) {
		return Outgoing{}, ErrNoSession
	}
	sess, _ = c.store.Get(sess.ID)

	return Outgoing{
		SessionID: sess.ID,
		Message:   msg,
		Request:   c.policy.Request(sess, text, box, fallback),
	}, nil
}

// Deliver manda out al servidor y agrega la respuesta al chat. No serializa
// envios: con dos envios en vuelo las respuestas se agregan en orden de llegada.
func (c *Controller) Deliver(ctx context.Context, out Outgoing) (Outcome, error) {
	reply, err := c.remote.SendMessage(ctx, out.Request)
	if err != nil {
		c.logger.Warn("send message failed",
			zap.Int64("session_id", out.SessionID),
			zap.Error(err),
		)
		return Outcome{}, &NetworkError{Op: "send message", Err: err}
	}

	// Solo un chat local se promueve; si otro envio ya lo promovio, la
	// respuesta se agrega al id vigente.
	target := c.resolve(out.SessionID)
	if c.policy.Ephemeral(target) && reply.SessionID > 0 && reply.SessionID != target {
		if c.store.Promote(target, reply.SessionID) {
			c.mu.Lock()
			c.promoted[target] = reply.SessionID
			if c.faqHidden[target] {
				c.faqHidden[reply.SessionID] = true
			}
			c.mu.Unlock()
			c.logger.Info("session promoted",
				zap.Int64("local_id", target),
				zap.Int64("session_id", reply.SessionID),
			)
			target = reply.SessionID
		}
	}

	msg := domain.Message{ID: c.nextID(), Text: reply.Text, Sender: domain.SenderAssistant}
	if !c.store.Append(target, msg) {
		c.logger.Warn("reply for unknown session dropped", zap.Int64("session_id", target))
		return Outcome{}, ErrNoSession
	}
	return Outcome{SessionID: target, User: out.Message, Reply: msg}, nil
}

func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	out, err := c.PrepareSubmit()
	if err != nil {
		return Outcome{}, err
	}
	return c.Deliver(ctx, out)
}

func (c *Controller) ClickFAQ(ctx context.Context, label string) (Outcome, error) {
	out, err := c.PrepareFAQ(label)
	if err != nil {
		return Outcome{}, err
	}
	return c.Deliver(ctx, out)
}

func (c *Controller) ClickPlot(ctx context.Context, label string) (Outcome, error) {
	out, err := c.PreparePlot(label)
	if err != nil {
		return Outcome{}, err
	}
	return c.Deliver(ctx, out)
}

// resolve sigue las promociones para encontrar el id vigente de un chat.
func (c *Controller) resolve(id int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		next, ok := c.promoted[id]
		if !ok {
			return id
		}
		id = next
	}
}

// nextID devuelve un id basado en el reloj, estrictamente creciente.
func (c *Controller) nextID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.now().UnixMilli()
	if id <= c.lastID {
		id = c.lastID + 1
	}
	c.lastID = id
	return id
}
