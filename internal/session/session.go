// Package session хранит токен авторизованного администратора.
//
// Токен создаётся при входе и уничтожается при выходе. Транспорт читает его при каждом запросе
// и никогда не изменяет. Если токен является JWT, из него без проверки подписи извлекаются
// роль и срок действия: подпись проверяет сервер, клиенту нужен только срок жизни,
// чтобы не отправлять заведомо отклонённые запросы.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoSession — администратор не выполнил вход.
	ErrNoSession = errors.New("session: not logged in")
	// ErrExpired — срок действия токена истёк.
	ErrExpired = errors.New("session: token expired")
)

// Claims описывает поля токена, которые интересны консоли.
type Claims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Session потокобезопасно хранит текущий токен.
type Session struct {
	mu     sync.RWMutex
	token  string
	claims *Claims
	now    func() time.Time
}

// New создаёт пустую сессию.
func New() *Session {
	return &Session{now: time.Now}
}

// Set сохраняет токен после входа. Непрозрачные (не JWT) токены принимаются без claims.
func (s *Session) Set(token string) {
	claims := parse(token)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.claims = claims
}

// Token возвращает токен для заголовка Authorization.
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return "", ErrNoSession
	}
	if s.expiredLocked() {
		return "", ErrExpired
	}
	return s.token, nil
}

// Clear уничтожает сессию при выходе или после отказа сервера.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.claims = nil
}

// Authenticated сообщает, есть ли действующий токен.
func (s *Session) Authenticated() bool {
	_, err := s.Token()
	return err == nil
}

// Claims возвращает копию claims, если токен был JWT.
func (s *Session) Claims() (Claims, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims == nil {
		return Claims{}, false
	}
	return *s.claims, true
}

// Subject возвращает владельца действующей сессии: id или email из claims,
// для непрозрачного токена его хеш. Без сессии возвращает пустую строку.
func (s *Session) Subject() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" || s.expiredLocked() {
		return ""
	}
	if s.claims != nil {
		if s.claims.ID != "" {
			return s.claims.ID
		}
		if s.claims.Email != "" {
			return s.claims.Email
		}
	}
	sum := sha256.Sum256([]byte(s.token))
	return hex.EncodeToString(sum[:8])
}

func (s *Session) expiredLocked() bool {
	if s.claims == nil || s.claims.ExpiresAt == nil {
		return false
	}
	return !s.now().Before(s.claims.ExpiresAt.Time)
}

func parse(token string) *Claims {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}
