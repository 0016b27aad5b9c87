package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"plotchat/internal/chat"
	"plotchat/internal/domain"
)

// SessionIDHeader lo setea el servicio con el id de la sesion que recibio el mensaje.
const SessionIDHeader = "X-Session-ID"

// TokenSource entrega el token actual; "" si no hay sesion iniciada.
type TokenSource interface {
	Token() string
}

// StatusError es una respuesta HTTP >= 400 del servicio.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chat api error: status=%d", e.Code)
}

// Client implementa chat.Remote y las operaciones de autenticacion contra el servicio.
type Client struct {
	baseURL string
	tokens  TokenSource
	client  *http.Client
	logger  *zap.Logger
}

// NewClient construye el cliente. timeout 0 significa sin timeout.
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

var _ chat.Remote = (*Client)(nil)

func (c *Client) FetchSessions(ctx context.Context) ([]domain.Session, error) {
	var sessions []domain.Session
	if _, err := c.do(ctx, http.MethodGet, "/sessions/", nil, true, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *Client) SendMessage(ctx context.Context, req chat.SendRequest) (chat.Reply, error) {
	var raw []byte
	header, err := c.do(ctx, http.MethodPost, "/generate-sentence/", req, true, &raw)
	if err != nil {
		return chat.Reply{}, err
	}

	reply := chat.Reply{Text: decodeReplyText(raw)}
	if v := header.Get(SessionIDHeader); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.logger.Warn("invalid session id header", zap.String("value", v))
		} else {
			reply.SessionID = id
		}
	}
	return reply, nil
}

// Credentials es lo que devuelve POST /login/.
type Credentials struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (c *Client) Login(ctx context.Context, username, password string) (Credentials, error) {
	body := map[string]string{"username": username, "password": password}
	var creds Credentials
	if _, err := c.do(ctx, http.MethodPost, "/login/", body, false, &creds); err != nil {
		return Credentials{}, err
	}
	if creds.Token == "" {
		return Credentials{}, errors.New("login response without token")
	}
	return creds, nil
}

func (c *Client) Signup(ctx context.Context, username, email, password string) error {
	body := map[string]string{"username": username, "email": email, "password": password}
	_, err := c.do(ctx, http.MethodPost, "/signup/", body, false, nil)
	return err
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/logout/", nil, true, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, in any, auth bool, out any) (http.Header, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if auth {
		// Sin token igual se manda el header: el chat es accesible antes del login.
		req.Header.Set("Authorization", "Token "+c.token())
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Warn("chat api error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)),
		)
		return nil, &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	switch dst := out.(type) {
	case nil:
	case *[]byte:
		// El cuerpo crudo lo interpreta quien llama.
		*dst = respBody
	default:
		if len(bytes.TrimSpace(respBody)) > 0 {
			if err := json.Unmarshal(respBody, dst); err != nil {
				return nil, fmt.Errorf("unmarshal response: %w", err)
			}
		}
	}
	return resp.Header, nil
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// decodeReplyText acepta el string JSON que manda el servicio y, si no lo es,
// usa el cuerpo tal cual.
func decodeReplyText(raw []byte) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return strings.TrimSpace(string(raw))
}
