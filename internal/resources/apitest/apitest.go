// Package apitest поднимает поддельный REST API консоли на httptest для тестов
// транспорта, ресурсов и страниц. Состояние хранится в памяти и меняется мутациями.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-admin/internal/config"
	"github.com/magabrotheeeer/subscription-admin/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-admin/internal/models"
	"github.com/magabrotheeeer/subscription-admin/internal/session"
	"github.com/magabrotheeeer/subscription-admin/internal/transport"
)

const (
	BasePath      = "/api/v1"
	AdminEmail    = "admin@example.com"
	AdminPassword = "secret123"
	OTP           = "123456"
	ForgotToken   = "forgot-token"
	ResetToken    = "reset-token"
)

type failure struct {
	status  int
	message string
}

// Upload — последняя принятая форма профиля.
type Upload struct {
	Fields   map[string]string
	Filename string
	Content  string
}

// Server — поддельный API.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	maker         *jwt.Maker
	token         string
	password      string
	users         []models.User
	plans         []models.Plan
	notifications []models.Notification
	profile       models.Profile
	earnings      map[int][]models.EarningPoint
	totalEvents   int
	pageSize      int
	nextID        int
	hits          map[string]int
	total         int
	failures      map[string]failure
	lastUpload    *Upload
}

// New запускает сервер с тестовыми данными и останавливает его по завершении теста.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		password:    AdminPassword,
		pageSize:    10,
		totalEvents: 42,
		hits:        make(map[string]int),
		failures:    make(map[string]failure),
	}
	s.maker = jwt.NewMaker("apitest", 24*time.Hour)
	s.token = s.signToken(AdminEmail)
	s.seed()
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// BaseURL возвращает базовый адрес API.
func (s *Server) BaseURL() string { return s.URL + BasePath }

// Config возвращает секцию api для клиента.
func (s *Server) Config() config.API {
	return config.API{BaseURL: s.BaseURL(), AssetsURL: s.URL}
}

// Session возвращает сессию, в которой уже выполнен вход.
func (s *Server) Session() *session.Session {
	sess := session.New()
	sess.Set(s.token)
	return sess
}

// Client создаёт транспорт к серверу с переданным источником токена.
func (s *Server) Client(tokens transport.TokenSource) *transport.Client {
	return transport.New(s.Config(), tokens, slog.New(slog.DiscardHandler))
}

// Token возвращает действующий токен администратора.
func (s *Server) Token() string { return s.token }

// Fail заставляет следующий запрос method path ответить статусом и сообщением.
// Пустое сообщение даёт тело без message.
func (s *Server) Fail(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, message: message}
}

// Hits возвращает число запросов method path, путь без BasePath.
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

// TotalHits возвращает число всех запросов.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// SetUsers заменяет пользователей.
func (s *Server) SetUsers(users []models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append([]models.User(nil), users...)
}

// SetPageSize задаёт размер страницы /users/all-users по умолчанию.
func (s *Server) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageSize = n
}

// SetPlans заменяет тарифы.
func (s *Server) SetPlans(plans []models.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans = append([]models.Plan(nil), plans...)
}

// SetEarnings задаёт доход за год.
func (s *Server) SetEarnings(year int, points []models.EarningPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.earnings[year] = points
}

// Notify добавляет уведомление в начало списка, как это делает сервер при новом событии.
func (s *Server) Notify(n models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append([]models.Notification{n}, s.notifications...)
}

// SetProfile заменяет профиль администратора.
func (s *Server) SetProfile(p models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
}

// Users возвращает копию пользователей.
func (s *Server) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.User(nil), s.users...)
}

// Plans возвращает копию тарифов.
func (s *Server) Plans() []models.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Plan(nil), s.plans...)
}

// Notifications возвращает копию уведомлений.
func (s *Server) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.notifications...)
}

// Profile возвращает профиль администратора.
func (s *Server) Profile() models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Password возвращает текущий пароль администратора.
func (s *Server) Password() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.password
}

// LastUpload возвращает последнюю форму профиля.
func (s *Server) LastUpload() *Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUpload
}

func (s *Server) seed() {
	sub := func(id string) *string { return &id }
	day := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 9, 30, 0, 0, time.UTC) }

	s.users = []models.User{
		{ID: "u1", FullName: "Jacob Jones", Email: "jacob@example.com", Role: "USER", IsActive: true, SubscriptionID: sub("sub_1"), Profile: "/uploads/jacob.png", CreatedAt: day(1, 15), UpdatedAt: day(3, 1)},
		{ID: "u2", FullName: "Kristin Watson", Email: "kristin@example.com", Role: "USER", IsActive: true, CreatedAt: day(2, 3), UpdatedAt: day(2, 3)},
		{ID: "u3", FullName: "Cody Fisher", Email: "cody@mail.com", Role: "USER", IsActive: false, SubscriptionID: sub("sub_3"), CreatedAt: day(2, 20), UpdatedAt: day(4, 2)},
		{ID: "u4", FullName: "Esther Howard", Email: "esther@example.com", Role: "USER", IsActive: false, Profile: "/images/default-user.png", CreatedAt: day(3, 8), UpdatedAt: day(3, 9)},
		{ID: "u5", FullName: "Jane Cooper", Email: "jane.cooper@mail.com", Role: "USER", IsActive: true, CreatedAt: day(5, 11), UpdatedAt: day(5, 12)},
	}
	s.plans = []models.Plan{
		{ID: "p1", Title: "Basic", ParticipantCount: 5, Benefits: []string{"Community access"}, PlanPrices: []models.PlanPrice{{Type: models.CycleFree, Price: 0}}},
		{ID: "p2", Title: "Pro", ParticipantCount: 50, Benefits: []string{"Analytics", "Email support"}, PlanPrices: []models.PlanPrice{{Type: models.CycleMonth, Price: 19.99}, {Type: models.CycleYear, Price: 199}}},
	}
	s.notifications = []models.Notification{
		{ID: "abc123", Message: "New user registered", Type: "info", IsRead: false, CreatedAt: day(6, 1)},
		{ID: "n2", Message: "Payment received", Type: "success", IsRead: false, CreatedAt: day(6, 2)},
		{ID: "n3", Message: "Subscription cancelled", Type: "warning", IsRead: true, CreatedAt: day(6, 3)},
	}
	s.profile = models.Profile{
		Profile:   "/uploads/admin.png",
		FullName:  "Admin User",
		Email:     AdminEmail,
		Role:      "ADMIN",
		Phone:     "+1 555 0100",
		IsActive:  true,
		CreatedAt: day(1, 1),
	}
	s.earnings = map[int][]models.EarningPoint{
		time.Now().Year(): {{Month: 1, TotalIncome: 1200}, {Month: 2, TotalIncome: 1850.5}},
	}
	s.nextID = 100
}

func (s *Server) signToken(email string) string {
	signed, err := s.maker.GenerateToken("admin-1", email, "ADMIN")
	if err != nil {
		panic(fmt.Sprintf("apitest: sign token: %v", err))
	}
	return signed
}

func (s *Server) routes() http.Handler {
	router := chi.NewRouter()
	router.Route(BasePath, func(r chi.Router) {
		r.Use(s.record)

		r.Post("/auth/login", s.login)
		r.Post("/auth/forgot-password-otp", s.forgotPassword)
		r.Patch("/auth/forgot-password-otp-match", s.otpMatch)
		r.Post("/auth/dashboard/reset-password", s.resetPassword)

		r.Group(func(r chi.Router) {
			r.Use(s.authorize)

			r.Patch("/auth/change-password", s.changePassword)
			r.Get("/payment/overview", s.overview)
			r.Get("/payment/all-earning-rasio", s.earningsByYear)
			r.Get("/users/all-users", s.listUsers)
			r.Patch("/users/blocked/{id}", s.toggleBlock)
			r.Get("/users/my-profile", s.myProfile)
			r.Patch("/users/update-my-profile", s.updateProfile)
			r.Get("/package/packages", s.listPlans)
			r.Post("/package/create-package", s.createPlan)
			r.Patch("/package/{id}", s.updatePlan)
			r.Delete("/package/{id}", s.deletePlan)
			r.Get("/notification/admin-all", s.listNotifications)
			r.Post("/notification/all-read", s.readAll)
			r.Delete("/notification/admin/{id}", s.deleteNotification)
		})
	})
	return router
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path[len(BasePath):]
		s.mu.Lock()
		s.hits[key]++
		s.total++
		f, failing := s.failures[key]
		delete(s.failures, key)
		s.mu.Unlock()

		if failing {
			if f.message == "" {
				render.Status(r, f.status)
				render.JSON(w, r, map[string]any{"success": false})
				return
			}
			fail(w, r, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !found {
			fail(w, r, http.StatusUnauthorized, "You are not authorized")
			return
		}
		if _, err := s.maker.ParseToken(token); err != nil {
			fail(w, r, http.StatusUnauthorized, "You are not authorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Meta    *models.Meta `json:"meta,omitempty"`
}

func ok(w http.ResponseWriter, r *http.Request, message string, data any, meta *models.Meta) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, envelope{Success: true, Message: message, Data: data, Meta: meta})
}

func fail(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, envelope{Success: false, Message: message})
}

func decode(r *http.Request, v any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decode(r, &creds); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	s.mu.Lock()
	valid := creds.Email == s.profile.Email && creds.Password == s.password
	token := s.token
	s.mu.Unlock()
	if !valid {
		fail(w, r, http.StatusBadRequest, "Invalid email or password")
		return
	}
	ok(w, r, "User logged in successfully", models.LoginResult{AccessToken: token}, nil)
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email != s.Profile().Email {
		fail(w, r, http.StatusNotFound, "User not found")
		return
	}
	ok(w, r, "OTP sent to your email", models.ForgotPasswordResult{Token: ForgotToken}, nil)
}

func (s *Server) otpMatch(w http.ResponseWriter, r *http.Request) {
	var req models.OTPMatchRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OTP != OTP {
		fail(w, r, http.StatusBadRequest, "Invalid OTP")
		return
	}
	ok(w, r, "OTP matched", models.OTPMatchResult{ForgetOtpMatchToken: ResetToken}, nil)
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("resettoken") != ResetToken {
		fail(w, r, http.StatusBadRequest, "Invalid reset token")
		return
	}
	var req models.PasswordReset
	if err := decode(r, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		fail(w, r, http.StatusBadRequest, "Passwords do not match")
		return
	}
	s.mu.Lock()
	s.password = req.NewPassword
	s.mu.Unlock()
	ok(w, r, "Password reset successfully", nil, nil)
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordChange
	if err := decode(r, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.OldPassword != s.password {
		fail(w, r, http.StatusBadRequest, "Old password is incorrect")
		return
	}
	s.password = req.NewPassword
	ok(w, r, "Password changed successfully", nil, nil)
}

func (s *Server) overview(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stats := models.Overview{TotalUsers: len(s.users), TotalEvents: s.totalEvents}
	for _, u := range s.users {
		if u.Tier() == models.TierPremium {
			stats.PremiumUsers++
		} else {
			stats.FreeUsers++
		}
	}
	for _, points := range s.earnings {
		for _, p := range points {
			stats.TotalEarnings += p.TotalIncome
		}
	}
	s.mu.Unlock()
	ok(w, r, "Overview retrieved", stats, nil)
}

func (s *Server) earningsByYear(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			fail(w, r, http.StatusBadRequest, "invalid year")
			return
		}
		year = y
	}
	s.mu.Lock()
	points := append([]models.EarningPoint{}, s.earnings[year]...)
	s.mu.Unlock()
	ok(w, r, "Earnings retrieved", points, nil)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	page, limit := 1, s.pageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	total := len(s.users)
	from := min((page-1)*limit, total)
	to := min(from+limit, total)
	totalPage := (total + limit - 1) / limit

	ok(w, r, "Users retrieved", append([]models.User{}, s.users[from:to]...), &models.Meta{
		Page:      page,
		Limit:     limit,
		Total:     total,
		TotalPage: totalPage,
	})
}

func (s *Server) toggleBlock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].IsActive = !s.users[i].IsActive
			msg := "User unblocked successfully"
			if !s.users[i].IsActive {
				msg = "User blocked successfully"
			}
			ok(w, r, msg, s.users[i], nil)
			return
		}
	}
	fail(w, r, http.StatusNotFound, "User not found")
}

func (s *Server) myProfile(w http.ResponseWriter, r *http.Request) {
	ok(w, r, "Profile retrieved", s.Profile(), nil)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}
	up := &Upload{Fields: make(map[string]string)}
	for k, vs := range r.MultipartForm.Value {
		if len(vs) > 0 {
			up.Fields[k] = vs[0]
		}
	}
	if file, header, err := r.FormFile("profile"); err == nil {
		content, _ := io.ReadAll(file)
		_ = file.Close()
		up.Filename = header.Filename
		up.Content = string(content)
	}

	s.mu.Lock()
	s.lastUpload = up
	s.profile.FullName = up.Fields["fullName"]
	s.profile.Email = up.Fields["email"]
	s.profile.Role = up.Fields["role"]
	s.profile.Phone = up.Fields["phone"]
	if up.Filename != "" {
		s.profile.Profile = "/uploads/" + up.Filename
	}
	p := s.profile
	s.mu.Unlock()
	ok(w, r, "Profile updated successfully", p, nil)
}

func (s *Server) listPlans(w http.ResponseWriter, r *http.Request) {
	ok(w, r, "Packages retrieved", s.Plans(), nil)
}

func (s *Server) createPlan(w http.ResponseWriter, r *http.Request) {
	var in models.PlanInput
	if err := decode(r, &in); err != nil || in.Title == "" {
		fail(w, r, http.StatusBadRequest, "Title is required")
		return
	}
	s.mu.Lock()
	s.nextID++
	plan := models.Plan{
		ID:               "p" + strconv.Itoa(s.nextID),
		Title:            in.Title,
		PlanPrices:       in.PlanPrices,
		Benefits:         in.Benefits,
		ParticipantCount: in.ParticipantCount,
	}
	s.plans = append(s.plans, plan)
	s.mu.Unlock()
	ok(w, r, "", plan, nil)
}

func (s *Server) updatePlan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in models.PlanInput
	if err := decode(r, &in); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.plans {
		if s.plans[i].ID == id {
			s.plans[i].Title = in.Title
			s.plans[i].PlanPrices = in.PlanPrices
			s.plans[i].Benefits = in.Benefits
			s.plans[i].ParticipantCount = in.ParticipantCount
			ok(w, r, "", s.plans[i], nil)
			return
		}
	}
	fail(w, r, http.StatusNotFound, "Package not found")
}

func (s *Server) deletePlan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.plans {
		if s.plans[i].ID == id {
			s.plans = append(s.plans[:i], s.plans[i+1:]...)
			ok(w, r, "", nil, nil)
			return
		}
	}
	fail(w, r, http.StatusNotFound, "Package not found")
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	items := s.Notifications()
	ok(w, r, "Notifications retrieved", items, &models.Meta{
		Page:      1,
		Limit:     len(items),
		Total:     len(items),
		TotalPage: 1,
	})
}

func (s *Server) readAll(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	for i := range s.notifications {
		s.notifications[i].IsRead = true
	}
	s.mu.Unlock()
	ok(w, r, "", nil, nil)
}

func (s *Server) deleteNotification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			ok(w, r, "", nil, nil)
			return
		}
	}
	fail(w, r, http.StatusNotFound, "Notification not found")
}
