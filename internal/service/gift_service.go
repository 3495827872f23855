package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sefazor/giftregistry-backend/internal/errs"
	"github.com/sefazor/giftregistry-backend/internal/models"
	"github.com/sefazor/giftregistry-backend/internal/repository"
	"github.com/sefazor/giftregistry-backend/pkg/storage"
	"github.com/sefazor/giftregistry-backend/pkg/utils"
)

// GiftService is the catalog. It executes mutations but never authorizes them.
type GiftService struct {
	giftRepo *repository.GiftRepository
	blobs    storage.BlobStore
}

func NewGiftService(giftRepo *repository.GiftRepository, blobs storage.BlobStore) *GiftService {
	return &GiftService{
		giftRepo: giftRepo,
		blobs:    blobs,
	}
}

func (s *GiftService) ListGifts(ctx context.Context) ([]models.GiftItem, error) {
	gifts, err := s.giftRepo.List(ctx)
	if err != nil {
		return nil, errs.Storage(err, "list gifts")
	}
	return gifts, nil
}

func (s *GiftService) CreateGift(ctx context.Context, req models.CreateGiftRequest) (*models.GiftItem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errs.Validation("gift name is required")
	}
	if req.SuggestedPrice != nil && *req.SuggestedPrice < 0 {
		return nil, errs.Validation("suggested price cannot be negative")
	}

	gift := &models.GiftItem{
		Name:           name,
		SuggestedPrice: req.SuggestedPrice,
	}
	if d := strings.TrimSpace(req.Description); d != "" {
		gift.Description = &d
	}
	if err := s.giftRepo.Create(ctx, gift); err != nil {
		return nil, errs.Storage(err, "create gift")
	}
	return gift, nil
}

func (s *GiftService) DeleteGift(ctx context.Context, id string) error {
	deleted, err := s.giftRepo.Delete(ctx, id)
	if err != nil {
		return errs.Storage(err, "delete gift")
	}
	if !deleted {
		return errs.NotFound("gift %s not found", id)
	}
	return nil
}

// AttachImage uploads an image and points the gift at its public URL.
func (s *GiftService) AttachImage(ctx context.Context, id string, data []byte) (*models.GiftItem, error) {
	if len(data) == 0 {
		return nil, errs.Validation("image is empty")
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, errs.Validation("unsupported image type %s", mt.String())
	}
	exists, err := s.giftRepo.Exists(ctx, id)
	if err != nil {
		return nil, errs.Storage(err, "load gift")
	}
	if !exists {
		return nil, errs.NotFound("gift %s not found", id)
	}

	key := fmt.Sprintf("gifts/%s/%d-%s%s", id, time.Now().UnixMilli(), utils.GenerateRandomString(6), mt.Extension())
	ref, err := s.blobs.Put(ctx, data, key, mt.String())
	if err != nil {
		return nil, errs.Storage(err, "upload gift image")
	}
	found, err := s.giftRepo.SetImageURL(ctx, id, s.blobs.Resolve(ref))
	if err != nil {
		_ = s.blobs.Delete(ctx, ref)
		return nil, errs.Storage(err, "update gift image")
	}
	if !found {
		// Deleted while the image was uploading.
		_ = s.blobs.Delete(ctx, ref)
		return nil, errs.NotFound("gift %s not found", id)
	}

	gift, err := s.giftRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errs.FromDB(err, "gift")
	}
	return gift, nil
}

// ListSelections returns reserved gifts for moderation.
func (s *GiftService) ListSelections(ctx context.Context) ([]models.GiftSelection, error) {
	gifts, err := s.giftRepo.ListSelected(ctx)
	if err != nil {
		return nil, errs.Storage(err, "list selections")
	}
	out := make([]models.GiftSelection, 0, len(gifts))
	for _, g := range gifts {
		out = append(out, models.GiftSelection{
			ID:             g.ID,
			Name:           g.Name,
			Description:    g.Description,
			SuggestedPrice: g.SuggestedPrice,
			SelectedBy:     g.SelectedBy,
			SelectedByName: g.SelectedByName,
			SelectedPhone:  g.SelectedByPhone,
			SelectedAt:     g.SelectedAt,
		})
	}
	return out, nil
}
