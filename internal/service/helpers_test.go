package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sefazor/giftregistry-backend/internal/models"
	"github.com/sefazor/giftregistry-backend/internal/repository"
	"github.com/sefazor/giftregistry-backend/pkg/bcrypt"
	"github.com/sefazor/giftregistry-backend/pkg/database"
	"github.com/sefazor/giftregistry-backend/pkg/jwt"
	"github.com/sefazor/giftregistry-backend/pkg/qrcode"
	"github.com/sefazor/giftregistry-backend/pkg/utils"
	"gorm.io/gorm"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type memBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool

	// afterPut runs once an object is stored.
	afterPut func()
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{objects: make(map[string][]byte)}
}

func (m *memBlobStore) Put(_ context.Context, data []byte, name, _ string) (string, error) {
	m.mu.Lock()
	if m.failPut {
		m.mu.Unlock()
		return "", errors.New("bucket unavailable")
	}
	m.objects[name] = append([]byte(nil), data...)
	afterPut := m.afterPut
	m.mu.Unlock()

	if afterPut != nil {
		afterPut()
	}
	return name, nil
}

func (m *memBlobStore) Exists(_ context.Context, ref string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[ref]
	return ok, nil
}

func (m *memBlobStore) Resolve(ref string) string {
	return "https://blobs.test/" + ref
}

func (m *memBlobStore) Delete(_ context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, ref)
	return nil
}

type testEnv struct {
	db     *gorm.DB
	blobs  *memBlobStore
	tokens *jwt.Manager

	eventRepo        *repository.EventConfigRepository
	guestRepo        *repository.GuestRepository
	giftRepo         *repository.GiftRepository
	contributionRepo *repository.ContributionRepository
	profileRepo      *repository.ProfileRepository
	revokedRepo      *repository.RevokedTokenRepository

	authz         *Authorizer
	events        *EventService
	guests        *GuestService
	gifts         *GiftService
	reservations  *ReservationService
	contributions *ContributionService
	verification  *VerificationService
	auth          *AuthService
	admin         *AdminService

	adminID, moderatorID, guestRoleID models.Identity
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewMemoryDatabase()
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	e := &testEnv{
		db:               db,
		blobs:            newMemBlobStore(),
		tokens:           jwt.NewManager(testSecret, "test"),
		eventRepo:        repository.NewEventConfigRepository(db),
		guestRepo:        repository.NewGuestRepository(db),
		giftRepo:         repository.NewGiftRepository(db),
		contributionRepo: repository.NewContributionRepository(db),
		profileRepo:      repository.NewProfileRepository(db),
		revokedRepo:      repository.NewRevokedTokenRepository(db),
	}
	e.authz = NewAuthorizer(NewRoleRegistry(e.profileRepo))
	e.events = NewEventService(e.eventRepo)
	e.guests = NewGuestService(e.guestRepo, e.tokens, utils.NewValidator(), time.Hour)
	e.gifts = NewGiftService(e.giftRepo, e.blobs)
	e.reservations = NewReservationService(e.giftRepo)
	e.contributions = NewContributionService(e.contributionRepo, e.eventRepo, e.blobs, ReceiptRules{
		MaxBytes:     1 << 20,
		AllowedTypes: []string{"image/png", "image/jpeg", "application/pdf"},
	})
	e.verification = NewVerificationService(e.contributionRepo, e.authz)
	e.auth = NewAuthService(e.profileRepo, e.revokedRepo, e.tokens, time.Hour)
	e.admin = NewAdminService(e.authz, e.events, e.gifts, e.guests, e.contributions, e.profileRepo, qrcode.NewQRService("https://example.com/"), utils.NewValidator())

	e.adminID = e.seedProfile(t, models.RoleAdmin, "admin@example.com", "admin-password")
	e.moderatorID = e.seedProfile(t, models.RoleModerator, "mod@example.com", "mod-password")
	e.guestRoleID = e.seedProfile(t, models.RoleGuest, "guest@example.com", "guest-password")
	return e
}

func (m *memBlobStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func (e *testEnv) seedProfile(t *testing.T, role models.Role, email, password string) models.Identity {
	t.Helper()
	hash, err := bcrypt.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	p := &models.Profile{Role: role, FullName: string(role) + " user", Email: &email, PasswordHash: hash}
	if err := e.profileRepo.Create(context.Background(), p); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return models.Identity{UserID: p.UserID, Email: email}
}

func (e *testEnv) seedGift(t *testing.T, name string) *models.GiftItem {
	t.Helper()
	g, err := e.gifts.CreateGift(context.Background(), models.CreateGiftRequest{Name: name})
	if err != nil {
		t.Fatalf("create gift: %v", err)
	}
	return g
}

func (e *testEnv) seedGuest(t *testing.T, name string) *models.GuestSession {
	t.Helper()
	s, err := e.guests.RegisterGuest(context.Background(), name, fmt.Sprintf("%s@example.com", name), "+55 11 90000-0000", "ANY")
	if err != nil {
		t.Fatalf("register guest: %v", err)
	}
	return s
}

func (e *testEnv) seedEventConfig(t *testing.T, accessCode string) {
	t.Helper()
	_, err := e.events.Upsert(context.Background(), models.EventConfigRequest{
		EventDate:      time.Date(2025, 11, 20, 19, 0, 0, 0, time.UTC),
		PixKey:         "pix@example.com",
		AccessCode:     accessCode,
		WelcomeMessage: "Bem-vindos",
	})
	if err != nil {
		t.Fatalf("upsert event config: %v", err)
	}
}

func (e *testEnv) seedContribution(t *testing.T, amount float64) string {
	t.Helper()
	up, err := e.contributions.UploadReceipt(context.Background(), pngBytes)
	if err != nil {
		t.Fatalf("upload receipt: %v", err)
	}
	id, err := e.contributions.Submit(context.Background(), amount, "Ana", "+55 11 91111-1111", up.ReceiptRef)
	if err != nil {
		t.Fatalf("submit contribution: %v", err)
	}
	return id
}
