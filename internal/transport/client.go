// Package transport реализует единый конвейер запросов к удалённому REST API:
// фиксированный базовый адрес, токен сессии, общие заголовки и нормализацию ошибок.
//
// Любой сбой — сеть, не-2xx статус, некорректный JSON — возвращается как *Error,
// поэтому вызывающему коду достаточно одного пути обработки ошибок.
// Клиент никогда не повторяет запросы сам.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/subscription-admin/internal/config"
	"github.com/magabrotheeeer/subscription-admin/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-admin/internal/metrics"
	"github.com/magabrotheeeer/subscription-admin/internal/models"
)

// TokenSource отдаёт текущий токен сессии. Транспорт только читает его.
type TokenSource interface {
	Token() (string, error)
}

// Field — текстовое поле multipart-формы.
type Field struct {
	Name  string
	Value string
}

// Form — multipart-тело запроса: текстовые поля и необязательный файл.
type Form struct {
	Fields    []Field
	FileField string
	File      *models.Upload
}

// Request описывает один вызов API.
type Request struct {
	Name   string // Логическое имя операции для логов и метрик
	Method string
	Path   string // Относительный путь, например "/package/packages"
	Query  url.Values
	Body   any   // Кодируется в JSON, если не nil
	Form   *Form // Взаимоисключающе с Body
	Header http.Header
	Public bool // Запрос без токена (вход, восстановление пароля)
}

// Response — раскрытый конверт { success, message, data, meta? }.
type Response struct {
	Status  int
	Success bool
	Message string
	Data    json.RawMessage
	Meta    *models.Meta
}

type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    *models.Meta    `json:"meta"`
}

// Client — настроенный HTTP-клиент консоли.
type Client struct {
	baseURL    string
	assetsURL  string
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter
	log        *slog.Logger
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет http.Client, например в тестах.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New создаёт клиент по секции конфига api.
// Нулевой таймаут оставляет поведение http.Client по умолчанию.
func New(cfg config.API, tokens TokenSource, log *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		assetsURL:  strings.TrimRight(cfg.AssetsURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tokens:     tokens,
		log:        log,
	}
	if c.assetsURL == "" {
		c.assetsURL = c.baseURL
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL возвращает базовый адрес API без завершающего слеша.
func (c *Client) BaseURL() string { return c.baseURL }

// Do выполняет запрос и возвращает раскрытый конверт либо *Error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	op := req.Name
	if op == "" {
		op = req.Method + " " + req.Path
	}
	log := c.log.With(sl.Op("transport.Do"), slog.String("name", op), sl.Endpoint(req.Method, req.Path))

	var token string
	if !req.Public {
		t, err := c.tokens.Token()
		if err != nil {
			log.Warn("request without session", sl.Err(err))
			return nil, &Error{Kind: KindUnauthenticated, Op: op, Err: err}
		}
		token = t
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &Error{Kind: KindNetwork, Op: op, Err: err}
		}
	}

	httpReq, err := c.newRequest(ctx, req, token)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: op, Err: err}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	metrics.UpstreamRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(op, metrics.StatusClass(0)).Inc()
		log.Error("request failed", sl.Err(err))
		return nil, &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()
	metrics.UpstreamRequestsTotal.WithLabelValues(op, metrics.StatusClass(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: op, Status: resp.StatusCode, Err: err}
	}

	var env envelope
	decodeErr := decodeEnvelope(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		kind := KindStatus
		// 401 на открытом запросе (неверный пароль или код) не означает потерю сессии
		if resp.StatusCode == http.StatusUnauthorized && !req.Public {
			kind = KindUnauthenticated
		}
		log.Warn("unexpected status", slog.Int("status", resp.StatusCode), slog.String("message", env.Message))
		return nil, &Error{
			Kind:    kind,
			Op:      op,
			Status:  resp.StatusCode,
			Message: env.Message,
			Err:     errors.New("unexpected status: " + resp.Status),
		}
	}
	if decodeErr != nil {
		log.Error("failed to decode response", sl.Err(decodeErr))
		return nil, &Error{Kind: KindDecode, Op: op, Status: resp.StatusCode, Err: decodeErr}
	}
	if env.Success != nil && !*env.Success {
		return nil, &Error{Kind: KindStatus, Op: op, Status: resp.StatusCode, Message: env.Message}
	}

	log.Debug("request completed", slog.Int("status", resp.StatusCode))
	return &Response{
		Status:  resp.StatusCode,
		Success: true,
		Message: env.Message,
		Data:    env.Data,
		Meta:    env.Meta,
	}, nil
}

// Call выполняет запрос и декодирует data в T.
func Call[T any](ctx context.Context, c *Client, req Request) (models.Envelope[T], error) {
	var out models.Envelope[T]
	resp, err := c.Do(ctx, req)
	if err != nil {
		return out, err
	}
	out.Success = resp.Success
	out.Message = resp.Message
	out.Meta = resp.Meta
	if len(resp.Data) == 0 || bytes.Equal(resp.Data, []byte("null")) {
		return out, nil
	}
	if err := json.Unmarshal(resp.Data, &out.Data); err != nil {
		return out, &Error{Kind: KindDecode, Op: req.Name, Status: resp.Status, Err: err}
	}
	return out, nil
}

// AssetURL превращает относительный путь изображения в абсолютный адрес.
// Пустой путь и заглушка default-user дают пустую строку: интерфейс покажет инициалы.
func (c *Client) AssetURL(path string) string {
	if path == "" || strings.Contains(path, "default-user") {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.assetsURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) newRequest(ctx context.Context, req Request, token string) (*http.Request, error) {
	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.Form != nil:
		buf, ct, err := encodeForm(req.Form)
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case req.Body != nil:
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(req.Body); err != nil {
			return nil, err
		}
		body, contentType = &buf, "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-Id", uuid.NewString())
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return httpReq, nil
}

func encodeForm(f *Form) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, field := range f.Fields {
		if err := w.WriteField(field.Name, field.Value); err != nil {
			return nil, "", err
		}
	}
	if f.File != nil && f.File.Content != nil {
		name := f.FileField
		if name == "" {
			name = "file"
		}
		part, err := w.CreateFormFile(name, f.File.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.File.Content); err != nil {
			return nil, "", fmt.Errorf("copy %s: %w", f.File.Filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func decodeEnvelope(raw []byte, env *envelope) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return json.Unmarshal(raw, env)
}
