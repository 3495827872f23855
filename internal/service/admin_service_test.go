package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sefazor/giftregistry-backend/internal/errs"
	"github.com/sefazor/giftregistry-backend/internal/models"
)

func TestAdmin_RoleMatrix(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ops := []struct {
		name         string
		moderatorMay bool
		run          func(caller models.Identity) error
	}{
		{name: "create gift", run: func(c models.Identity) error {
			_, err := env.admin.CreateGift(ctx, c, models.CreateGiftRequest{Name: "Cafeteira"})
			return err
		}},
		{name: "upsert event config", run: func(c models.Identity) error {
			_, err := env.admin.UpsertEventConfig(ctx, c, models.EventConfigRequest{EventDate: time.Now(), PixKey: "k", AccessCode: "c"})
			return err
		}},
		{name: "list profiles", run: func(c models.Identity) error {
			_, err := env.admin.ListProfiles(ctx, c)
			return err
		}},
		{name: "invite qr", run: func(c models.Identity) error {
			_, err := env.admin.InviteQRCode(ctx, c, 256)
			return err
		}},
		{name: "list rsvps", moderatorMay: true, run: func(c models.Identity) error {
			_, err := env.admin.ListRSVPs(ctx, c)
			return err
		}},
		{name: "list selections", moderatorMay: true, run: func(c models.Identity) error {
			_, err := env.admin.ListSelections(ctx, c)
			return err
		}},
		{name: "list contributions", moderatorMay: true, run: func(c models.Identity) error {
			_, err := env.admin.ListContributions(ctx, c)
			return err
		}},
	}

	for _, op := range ops {
		t.Run(op.name, func(t *testing.T) {
			if err := op.run(env.adminID); err != nil {
				t.Fatalf("admin: error = %v", err)
			}
			err := op.run(env.moderatorID)
			if op.moderatorMay && err != nil {
				t.Fatalf("moderator: error = %v", err)
			}
			if !op.moderatorMay && !errors.Is(err, errs.ErrAuthorization) {
				t.Fatalf("moderator: error = %v, want Authorization", err)
			}
			if err := op.run(env.guestRoleID); !errors.Is(err, errs.ErrAuthorization) {
				t.Fatalf("guest: error = %v, want Authorization", err)
			}
		})
	}
}

func TestAdmin_DeniedCallLeavesCatalogUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	gift := env.seedGift(t, "Aspirador")

	if err := env.admin.DeleteGift(ctx, env.moderatorID, gift.ID); !errors.Is(err, errs.ErrAuthorization) {
		t.Fatalf("DeleteGift(moderator) error = %v", err)
	}
	if ok, _ := env.giftRepo.Exists(ctx, gift.ID); !ok {
		t.Fatal("gift deleted by unauthorized caller")
	}
	if err := env.admin.DeleteGift(ctx, env.adminID, gift.ID); err != nil {
		t.Fatalf("DeleteGift(admin) error = %v", err)
	}
	if err := env.admin.DeleteGift(ctx, env.adminID, gift.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("second DeleteGift() error = %v, want NotFound", err)
	}
}

func TestAdmin_UploadGiftImage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	gift := env.seedGift(t, "Quadro")

	updated, err := env.admin.UploadGiftImage(ctx, env.adminID, gift.ID, pngBytes)
	if err != nil {
		t.Fatalf("UploadGiftImage() error = %v", err)
	}
	if updated.ImageURL == nil || !bytes.Contains([]byte(*updated.ImageURL), []byte("gifts/"+gift.ID+"/")) {
		t.Fatalf("ImageURL = %v", updated.ImageURL)
	}
	if _, err := env.admin.UploadGiftImage(ctx, env.adminID, gift.ID, []byte("%PDF-1.4")); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("pdf image error = %v, want Validation", err)
	}
	if _, err := env.admin.UploadGiftImage(ctx, env.adminID, "missing", pngBytes); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("missing gift error = %v, want NotFound", err)
	}
}

func TestAdmin_UploadGiftImage_GiftDeletedDuringUpload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	gift := env.seedGift(t, "Abajur")

	env.blobs.afterPut = func() {
		if _, err := env.giftRepo.Delete(ctx, gift.ID); err != nil {
			t.Errorf("Delete() error = %v", err)
		}
	}
	if _, err := env.admin.UploadGiftImage(ctx, env.adminID, gift.ID, pngBytes); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("UploadGiftImage() error = %v, want NotFound", err)
	}
	if n := env.blobs.count(); n != 0 {
		t.Fatalf("stored blobs = %d, want 0", n)
	}
}

func TestAdmin_Profiles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p, err := env.admin.CreateProfile(ctx, env.adminID, models.CreateProfileRequest{
		FullName: "Nova Moderadora",
		Email:    "Nova@Example.com",
		Password: "long-enough",
		Role:     models.RoleModerator,
	})
	if err != nil {
		t.Fatalf("CreateProfile() error = %v", err)
	}
	if p.Email == nil || *p.Email != "nova@example.com" || p.Role != models.RoleModerator {
		t.Fatalf("profile = %+v", p)
	}

	_, err = env.admin.CreateProfile(ctx, env.adminID, models.CreateProfileRequest{
		FullName: "Dup", Email: "nova@example.com", Password: "long-enough", Role: models.RoleGuest,
	})
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("duplicate CreateProfile() error = %v, want Validation", err)
	}

	updated, err := env.admin.SetRole(ctx, env.adminID, p.UserID, models.RoleAdmin)
	if err != nil {
		t.Fatalf("SetRole() error = %v", err)
	}
	if updated.Role != models.RoleAdmin {
		t.Fatalf("Role = %s, want admin", updated.Role)
	}

	if _, err := env.admin.SetRole(ctx, env.adminID, env.adminID.UserID, models.RoleGuest); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("self SetRole() error = %v, want Validation", err)
	}
	if _, err := env.admin.SetRole(ctx, env.adminID, "missing", models.RoleGuest); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("SetRole(missing) error = %v, want NotFound", err)
	}
	if _, err := env.admin.SetRole(ctx, env.adminID, p.UserID, "owner"); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("SetRole(owner) error = %v, want Validation", err)
	}
	if _, err := env.admin.SetRole(ctx, env.moderatorID, env.guestRoleID.UserID, models.RoleAdmin); !errors.Is(err, errs.ErrAuthorization) {
		t.Fatalf("SetRole(moderator) error = %v, want Authorization", err)
	}

	// p is now a second admin; neither admin may change the other.
	second := models.Identity{UserID: p.UserID}
	if _, err := env.admin.SetRole(ctx, second, env.adminID.UserID, models.RoleGuest); !errors.Is(err, errs.ErrAuthorization) {
		t.Fatalf("SetRole(peer admin) error = %v, want Authorization", err)
	}
	if _, err := env.admin.SetRole(ctx, env.adminID, p.UserID, models.RoleModerator); !errors.Is(err, errs.ErrAuthorization) {
		t.Fatalf("SetRole(peer admin) error = %v, want Authorization", err)
	}
	for _, id := range []string{env.adminID.UserID, p.UserID} {
		stored, _ := env.profileRepo.GetByUserID(ctx, id)
		if stored.Role != models.RoleAdmin {
			t.Fatalf("profile %s role = %s, want admin", id, stored.Role)
		}
	}
}

func TestAdmin_RequestValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tt := []struct {
		name string
		run  func(caller models.Identity) error
	}{
		{name: "profile with bad email", run: func(c models.Identity) error {
			_, err := env.admin.CreateProfile(ctx, c, models.CreateProfileRequest{
				FullName: "Ana", Email: "not-an-email", Password: "long-enough", Role: models.RoleModerator,
			})
			return err
		}},
		{name: "profile with blank name", run: func(c models.Identity) error {
			_, err := env.admin.CreateProfile(ctx, c, models.CreateProfileRequest{
				FullName: "   ", Email: "ana@example.com", Password: "long-enough", Role: models.RoleModerator,
			})
			return err
		}},
		{name: "gift with blank name", run: func(c models.Identity) error {
			_, err := env.admin.CreateGift(ctx, c, models.CreateGiftRequest{Name: "  "})
			return err
		}},
		{name: "gift with negative price", run: func(c models.Identity) error {
			price := -1.0
			_, err := env.admin.CreateGift(ctx, c, models.CreateGiftRequest{Name: "Mesa", SuggestedPrice: &price})
			return err
		}},
		{name: "event config with blank pix key", run: func(c models.Identity) error {
			_, err := env.admin.UpsertEventConfig(ctx, c, models.EventConfigRequest{EventDate: time.Now(), PixKey: " ", AccessCode: "WED2025"})
			return err
		}},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.run(env.adminID); !errors.Is(err, errs.ErrValidation) {
				t.Fatalf("admin: error = %v, want Validation", err)
			}
			if err := tc.run(env.moderatorID); !errors.Is(err, errs.ErrAuthorization) {
				t.Fatalf("moderator: error = %v, want Authorization", err)
			}
		})
	}
}

func TestAdmin_EventConfigIsSingleton(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.admin.GetEventConfig(ctx, env.adminID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("GetEventConfig() before upsert error = %v", err)
	}
	date := time.Date(2025, 11, 20, 19, 0, 0, 0, time.UTC)
	for _, code := range []string{"FIRST", "WED2025"} {
		if _, err := env.admin.UpsertEventConfig(ctx, env.adminID, models.EventConfigRequest{
			EventDate: date, PixKey: "pix@example.com", AccessCode: code,
		}); err != nil {
			t.Fatalf("UpsertEventConfig(%s) error = %v", code, err)
		}
	}
	cfg, err := env.admin.GetEventConfig(ctx, env.adminID)
	if err != nil {
		t.Fatalf("GetEventConfig() error = %v", err)
	}
	if cfg.ID != models.EventConfigID || cfg.AccessCode != "WED2025" {
		t.Fatalf("config = %+v", cfg)
	}
	var count int64
	env.db.Model(&models.EventConfig{}).Count(&count)
	if count != 1 {
		t.Fatalf("event_config rows = %d, want 1", count)
	}

	if _, err := env.admin.UpsertEventConfig(ctx, env.adminID, models.EventConfigRequest{PixKey: "k", AccessCode: "c"}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("UpsertEventConfig(no date) error = %v, want Validation", err)
	}
}

func TestAdmin_InviteQRCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedEventConfig(t, "WED2025")

	png, err := env.admin.InviteQRCode(ctx, env.adminID, 256)
	if err != nil {
		t.Fatalf("InviteQRCode() error = %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatal("InviteQRCode() did not return a PNG")
	}
	for _, size := range []int{64, 2048} {
		if _, err := env.admin.InviteQRCode(ctx, env.adminID, size); !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("InviteQRCode(%d) error = %v, want Validation", size, err)
		}
	}
}
