package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"plotchat/internal/chat"
	"plotchat/internal/domain"
	"plotchat/internal/llm"
	"plotchat/internal/repository"
)

// sentencePrompt es el prompt enviado al LLM para textos que no son palabras clave.
const sentencePrompt = "generate a sentence with %s these words"

var keywordReplies = map[string]string{
	"Graph":       chat.SentinelPlotSelector,
	"graph":       chat.SentinelPlotSelector,
	"BarPlot":     chat.SentinelBarChart,
	"PiePlot":     chat.SentinelPieChart,
	"ScatterPlot": chat.SentinelScatterChart,
	"LinePlot":    chat.SentinelLineChart,
}

var (
	ErrEmptyInput       = errors.New("input text is empty")
	ErrSessionNotFound  = errors.New("session not found")
	ErrGenerationFailed = errors.New("sentence generation failed")
)

// SentenceRequest es el cuerpo de POST /generate-sentence/.
type SentenceRequest struct {
	Input        string
	SessionID    *int64
	SessionTitle *string
}

// SentenceResult es la respuesta y la sesion donde quedo guardado el turno.
type SentenceResult struct {
	SessionID int64
	Reply     string
	Created   bool
}

// SentenceService responde mensajes y persiste cada turno en la sesion del usuario.
type SentenceService struct {
	logger   *zap.Logger
	sessions repository.SessionRepository
	llm      llm.LLMClient
	now      func() time.Time
}

func NewSentenceService(logger *zap.Logger, sessions repository.SessionRepository, llmClient llm.LLMClient) *SentenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SentenceService{
		logger:   logger,
		sessions: sessions,
		llm:      llmClient,
		now:      time.Now,
	}
}

// KeywordReply devuelve el codigo fijo para las palabras clave de graficos.
func KeywordReply(input string) (string, bool) {
	reply, ok := keywordReplies[input]
	return reply, ok
}

// Generate valida la entrada, obtiene la respuesta y guarda el turno. Sin
// session_id crea una sesion nueva; la sesion solo se crea si hubo respuesta.
func (s *SentenceService) Generate(ctx context.Context, userID string, req SentenceRequest) (SentenceResult, error) {
	if strings.TrimSpace(req.Input) == "" {
		return SentenceResult{}, ErrEmptyInput
	}

	var existing *domain.ChatRecord
	if req.SessionID != nil && *req.SessionID > 0 {
		rec, err := s.sessions.GetForUser(ctx, userID, *req.SessionID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return SentenceResult{}, ErrSessionNotFound
			}
			return SentenceResult{}, err
		}
		existing = &rec
	}

	reply, err := s.reply(ctx, req.Input)
	if err != nil {
		return SentenceResult{}, err
	}

	now := s.now().UTC()
	turn := domain.Turn{User: req.Input, Assistant: reply, Time: now.Format(domain.TurnTimeLayout)}

	if existing != nil {
		if err := s.sessions.AppendTurn(ctx, userID, existing.ID, turn); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return SentenceResult{}, ErrSessionNotFound
			}
			return SentenceResult{}, err
		}
		return SentenceResult{SessionID: existing.ID, Reply: reply}, nil
	}

	rec, err := s.sessions.Create(ctx, domain.ChatRecord{
		UserID:    userID,
		Title:     s.titleFor(req),
		Turns:     []domain.Turn{turn},
		CreatedAt: now,
	})
	if err != nil {
		return SentenceResult{}, err
	}
	s.logger.Info("session created", zap.Int64("session_id", rec.ID), zap.String("user_id", userID))
	return SentenceResult{SessionID: rec.ID, Reply: reply, Created: true}, nil
}

func (s *SentenceService) ListSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	records, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Session, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Session())
	}
	return out, nil
}

func (s *SentenceService) GetSession(ctx context.Context, userID string, id int64) (domain.Session, error) {
	rec, err := s.sessions.GetForUser(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Session{}, ErrSessionNotFound
		}
		return domain.Session{}, err
	}
	return rec.Session(), nil
}

func (s *SentenceService) reply(ctx context.Context, input string) (string, error) {
	if reply, ok := KeywordReply(input); ok {
		return reply, nil
	}
	if s.llm == nil {
		return "", fmt.Errorf("%w: llm not configured", ErrGenerationFailed)
	}
	raw, err := s.llm.Generate(ctx, fmt.Sprintf(sentencePrompt, input))
	if err != nil {
		s.logger.Error("llm generate failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	reply := cleanLLMResponse(raw)
	if reply == "" {
		return "", fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}
	return reply, nil
}

// titleFor usa session_title si vino; si no, lo deriva del primer mensaje.
func (s *SentenceService) titleFor(req SentenceRequest) string {
	if req.SessionTitle != nil && strings.TrimSpace(*req.SessionTitle) != "" {
		return *req.SessionTitle
	}
	return chat.DeriveTitle(req.Input, chat.DefaultTitleLength)
}
