package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/giftregistry-backend/internal/models"
	"github.com/sefazor/giftregistry-backend/internal/repository"
	"github.com/sefazor/giftregistry-backend/internal/service"
	"github.com/sefazor/giftregistry-backend/pkg/bcrypt"
	"github.com/sefazor/giftregistry-backend/pkg/database"
	"github.com/sefazor/giftregistry-backend/pkg/jwt"
	"github.com/sefazor/giftregistry-backend/pkg/qrcode"
	"github.com/sefazor/giftregistry-backend/pkg/utils"
	"go.uber.org/zap"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type memBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memBlobStore) Put(_ context.Context, data []byte, name, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[name] = data
	return name, nil
}

func (m *memBlobStore) Exists(_ context.Context, ref string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[ref]
	return ok, nil
}

func (m *memBlobStore) Resolve(ref string) string { return "https://blobs.test/" + ref }

func (m *memBlobStore) Delete(_ context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, ref)
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := database.NewMemoryDatabase()
	if err != nil {
		t.Fatalf("NewMemoryDatabase() error = %v", err)
	}

	tokens := jwt.NewManager("0123456789abcdef0123456789abcdef", "test")
	blobs := &memBlobStore{objects: map[string][]byte{}}
	validator := utils.NewValidator()

	eventRepo := repository.NewEventConfigRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	contributionRepo := repository.NewContributionRepository(db)
	giftRepo := repository.NewGiftRepository(db)

	for _, p := range []struct {
		email string
		role  models.Role
	}{
		{"admin@example.com", models.RoleAdmin},
		{"guest@example.com", models.RoleGuest},
	} {
		hash, _ := bcrypt.HashPassword("password123")
		email := p.email
		if err := profileRepo.Create(context.Background(), &models.Profile{Role: p.role, FullName: p.email, Email: &email, PasswordHash: hash}); err != nil {
			t.Fatalf("seed profile: %v", err)
		}
	}

	authz := service.NewAuthorizer(service.NewRoleRegistry(profileRepo))
	events := service.NewEventService(eventRepo)
	guests := service.NewGuestService(repository.NewGuestRepository(db), tokens, validator, time.Hour)
	gifts := service.NewGiftService(giftRepo, blobs)
	contributions := service.NewContributionService(contributionRepo, eventRepo, blobs, service.ReceiptRules{
		MaxBytes:     1 << 20,
		AllowedTypes: []string{"image/png"},
	})

	return NewApp(Deps{
		Access:         service.NewAccessService(service.NewAccessPolicy(false, eventRepo), tokens, time.Minute),
		Guests:         guests,
		Events:         events,
		Gifts:          gifts,
		Reservations:   service.NewReservationService(giftRepo),
		Contributions:  contributions,
		Verification:   service.NewVerificationService(contributionRepo, authz),
		Admin:          service.NewAdminService(authz, events, gifts, guests, contributions, profileRepo, qrcode.NewQRService("https://example.com/"), validator),
		Auth:           service.NewAuthService(profileRepo, repository.NewRevokedTokenRepository(db), tokens, time.Hour),
		Validator:      validator,
		Log:            zap.NewNop(),
		AllowOrigins:   "http://localhost:5173",
		RateLimitMax:   1000,
		MaxUploadBytes: 1 << 20,
	})
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, envelope) {
	t.Helper()
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	var env envelope
	if len(body) > 0 {
		if err := json.Unmarshal(body, &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", req.Method, req.URL.Path, body, err)
		}
	}
	return resp.StatusCode, env
}

func jsonRequest(method, path, token string, body any) *http.Request {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return req
}

func fileRequest(path, token, field string, data []byte) *http.Request {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, _ := w.CreateFormFile(field, "upload.png")
	part.Write(data)
	w.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	return req
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

func login(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	status, env := do(t, app, jsonRequest(http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: email, Password: "password123"}))
	if status != fiber.StatusOK {
		t.Fatalf("login %s: status %d (%s)", email, status, env.Error)
	}
	return decode[models.AuthResponse](t, env.Data).Token
}

func rsvp(t *testing.T, app *fiber.App, code, name string) string {
	t.Helper()
	status, env := do(t, app, jsonRequest(http.MethodPost, "/api/access", "", models.AccessRequest{Code: code}))
	if status != fiber.StatusOK {
		t.Fatalf("access: status %d (%s)", status, env.Error)
	}
	ticket := decode[models.AccessTicket](t, env.Data).Ticket

	status, env = do(t, app, jsonRequest(http.MethodPost, "/api/rsvp", ticket, models.RSVPRequest{
		FullName: name, Email: "guest@example.com", Phone: "+55 11 95555-4444",
	}))
	if status != fiber.StatusCreated {
		t.Fatalf("rsvp: status %d (%s)", status, env.Error)
	}
	session := decode[models.GuestSession](t, env.Data)
	if session.Guest.AccessCodeUsed != code {
		t.Fatalf("AccessCodeUsed = %q, want %q", session.Guest.AccessCodeUsed, code)
	}
	return session.SessionToken
}

func TestGuestJourney(t *testing.T) {
	app := newTestApp(t)
	admin := login(t, app, "admin@example.com")

	status, env := do(t, app, jsonRequest(http.MethodPut, "/api/admin/event-config", admin, models.EventConfigRequest{
		EventDate: time.Date(2025, 11, 20, 19, 0, 0, 0, time.UTC), PixKey: "pix@example.com", AccessCode: "WED2025",
	}))
	if status != fiber.StatusOK {
		t.Fatalf("event config: status %d (%s)", status, env.Error)
	}
	status, env = do(t, app, jsonRequest(http.MethodPost, "/api/admin/gifts", admin, models.CreateGiftRequest{Name: "Jogo de taças"}))
	if status != fiber.StatusCreated {
		t.Fatalf("create gift: status %d (%s)", status, env.Error)
	}
	gift := decode[models.GiftItem](t, env.Data)

	// The configured code is WED2025 but admission is open.
	first := rsvp(t, app, "ANY", "Maria")
	second := rsvp(t, app, "ANY", "João")

	status, env = do(t, app, jsonRequest(http.MethodGet, "/api/event", first, nil))
	if status != fiber.StatusOK {
		t.Fatalf("event info: status %d", status)
	}
	if bytes.Contains(env.Data, []byte("WED2025")) {
		t.Fatal("public event info leaks the access code")
	}

	status, env = do(t, app, jsonRequest(http.MethodGet, "/api/gifts", first, nil))
	if status != fiber.StatusOK || len(decode[[]models.GiftItem](t, env.Data)) != 1 {
		t.Fatalf("list gifts: status %d data %s", status, env.Data)
	}

	reserve := "/api/gifts/" + gift.ID + "/reserve"
	status, env = do(t, app, jsonRequest(http.MethodPost, reserve, first, models.ReserveRequest{Name: "Maria", Phone: "1"}))
	if status != fiber.StatusOK || decode[models.ReservationResult](t, env.Data).Status != models.Reserved {
		t.Fatalf("reserve: status %d data %s", status, env.Data)
	}
	status, env = do(t, app, jsonRequest(http.MethodPost, reserve, second, models.ReserveRequest{Name: "João", Phone: "2"}))
	if status != fiber.StatusConflict || env.Code != "already_reserved" {
		t.Fatalf("second reserve: status %d code %s", status, env.Code)
	}
	if decode[models.ReservationResult](t, env.Data).Status != models.AlreadyReserved {
		t.Fatalf("second reserve data = %s", env.Data)
	}

	status, env = do(t, app, fileRequest("/api/contributions/receipts", first, "receipt", pngBytes))
	if status != fiber.StatusCreated {
		t.Fatalf("upload receipt: status %d (%s)", status, env.Error)
	}
	upload := decode[models.ReceiptUpload](t, env.Data)

	for _, amount := range []float64{0, -5} {
		status, _ = do(t, app, jsonRequest(http.MethodPost, "/api/contributions", first, models.SubmitContributionRequest{
			Amount: amount, Name: "Maria", ReceiptRef: upload.ReceiptRef,
		}))
		if status != fiber.StatusBadRequest {
			t.Fatalf("submit %v: status %d, want 400", amount, status)
		}
	}
	status, env = do(t, app, jsonRequest(http.MethodPost, "/api/contributions", first, models.SubmitContributionRequest{
		Amount: 0.01, Name: "Maria", Phone: "+55 11 93333-2222", ReceiptRef: upload.ReceiptRef,
	}))
	if status != fiber.StatusCreated {
		t.Fatalf("submit: status %d (%s)", status, env.Error)
	}
	contributionID := decode[struct {
		ID string `json:"id"`
	}](t, env.Data).ID

	decision := "/api/moderation/contributions/" + contributionID + "/decision"
	guestRole := login(t, app, "guest@example.com")
	status, _ = do(t, app, jsonRequest(http.MethodPost, decision, guestRole, models.DecisionRequest{Outcome: models.StatusVerified}))
	if status != fiber.StatusForbidden {
		t.Fatalf("guest-role decision: status %d, want 403", status)
	}
	status, env = do(t, app, jsonRequest(http.MethodGet, "/api/contributions/"+contributionID, first, nil))
	if status != fiber.StatusOK || decode[models.Contribution](t, env.Data).Status != models.StatusPending {
		t.Fatalf("contribution after denied decision: status %d data %s", status, env.Data)
	}
	if bytes.Contains(env.Data, []byte("93333-2222")) || bytes.Contains(env.Data, []byte("contributor_phone")) {
		t.Fatalf("guest contribution view leaks phone: %s", env.Data)
	}

	status, _ = do(t, app, jsonRequest(http.MethodPost, decision, admin, models.DecisionRequest{Outcome: models.StatusVerified}))
	if status != fiber.StatusOK {
		t.Fatalf("admin decision: status %d", status)
	}
	_, env = do(t, app, jsonRequest(http.MethodGet, "/api/contributions/"+contributionID, first, nil))
	if decode[models.Contribution](t, env.Data).Status != models.StatusVerified {
		t.Fatalf("contribution after decision = %s", env.Data)
	}

	status, env = do(t, app, jsonRequest(http.MethodGet, "/api/moderation/selections", admin, nil))
	if status != fiber.StatusOK || len(decode[[]models.GiftSelection](t, env.Data)) != 1 {
		t.Fatalf("selections: status %d data %s", status, env.Data)
	}
}

func TestAuthenticationRequired(t *testing.T) {
	app := newTestApp(t)
	admin := login(t, app, "admin@example.com")
	session := rsvp(t, app, "ANY", "Ana")

	tt := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{name: "gifts without session", method: http.MethodGet, path: "/api/gifts", want: fiber.StatusUnauthorized},
		{name: "gifts with identity token", method: http.MethodGet, path: "/api/gifts", token: admin, want: fiber.StatusUnauthorized},
		{name: "rsvp without ticket", method: http.MethodPost, path: "/api/rsvp", want: fiber.StatusUnauthorized},
		{name: "rsvp with session token", method: http.MethodPost, path: "/api/rsvp", token: session, want: fiber.StatusUnauthorized},
		{name: "admin with session token", method: http.MethodGet, path: "/api/admin/profiles", token: session, want: fiber.StatusUnauthorized},
		{name: "admin with identity", method: http.MethodGet, path: "/api/admin/profiles", token: admin, want: fiber.StatusOK},
		{name: "unknown gift", method: http.MethodPost, path: "/api/gifts/missing/reserve", token: session, want: fiber.StatusNotFound},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			var body any
			if tc.method == http.MethodPost {
				body = models.ReserveRequest{Name: "Ana", Phone: "1"}
			}
			status, env := do(t, app, jsonRequest(tc.method, tc.path, tc.token, body))
			if status != tc.want {
				t.Fatalf("status = %d (%s), want %d", status, env.Error, tc.want)
			}
		})
	}

	status, _ := do(t, app, jsonRequest(http.MethodPost, "/api/auth/logout", admin, nil))
	if status != fiber.StatusOK {
		t.Fatalf("logout: status %d", status)
	}
	status, _ = do(t, app, jsonRequest(http.MethodGet, "/api/auth/me", admin, nil))
	if status != fiber.StatusUnauthorized {
		t.Fatalf("me after logout: status %d, want 401", status)
	}
}

func TestInviteQRCode(t *testing.T) {
	app := newTestApp(t)
	admin := login(t, app, "admin@example.com")

	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/admin/invite-qr?size=200", admin, nil), -1)
	if err != nil {
		t.Fatalf("invite qr: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusOK || resp.Header.Get(fiber.HeaderContentType) != "image/png" || !bytes.HasPrefix(body, []byte("\x89PNG")) {
		t.Fatalf("invite qr: status %d type %s", resp.StatusCode, resp.Header.Get(fiber.HeaderContentType))
	}
}
