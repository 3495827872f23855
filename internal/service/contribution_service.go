package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sefazor/giftregistry-backend/internal/errs"
	"github.com/sefazor/giftregistry-backend/internal/models"
	"github.com/sefazor/giftregistry-backend/internal/repository"
	"github.com/sefazor/giftregistry-backend/pkg/storage"
	"github.com/sefazor/giftregistry-backend/pkg/utils"
	"gorm.io/gorm"
)

// ReceiptRules bounds what may be uploaded as receipt evidence.
type ReceiptRules struct {
	MaxBytes     int
	AllowedTypes []string
}

// ContributionService is the ledger of off-band contributions.
type ContributionService struct {
	repo      *repository.ContributionRepository
	eventRepo *repository.EventConfigRepository
	blobs     storage.BlobStore
	rules     ReceiptRules
	now       func() time.Time
}

func NewContributionService(
	repo *repository.ContributionRepository,
	eventRepo *repository.EventConfigRepository,
	blobs storage.BlobStore,
	rules ReceiptRules,
) *ContributionService {
	return &ContributionService{
		repo:      repo,
		eventRepo: eventRepo,
		blobs:     blobs,
		rules:     rules,
		now:       time.Now,
	}
}

// UploadReceipt stores receipt evidence and returns its reference.
func (s *ContributionService) UploadReceipt(ctx context.Context, data []byte) (*models.ReceiptUpload, error) {
	if len(data) == 0 {
		return nil, errs.Validation("receipt is empty")
	}
	if s.rules.MaxBytes > 0 && len(data) > s.rules.MaxBytes {
		return nil, errs.Validation("receipt exceeds %d bytes", s.rules.MaxBytes)
	}
	mt := mimetype.Detect(data)
	if len(s.rules.AllowedTypes) > 0 && !slices.ContainsFunc(s.rules.AllowedTypes, mt.Is) {
		return nil, errs.Validation("unsupported receipt type %s", mt.String())
	}

	key := fmt.Sprintf("receipts/%d-%s%s", s.now().UnixMilli(), utils.GenerateRandomString(8), mt.Extension())
	ref, err := s.blobs.Put(ctx, data, key, mt.String())
	if err != nil {
		return nil, errs.Storage(err, "upload receipt")
	}
	return &models.ReceiptUpload{
		ReceiptRef: ref,
		ReceiptURL: s.blobs.Resolve(ref),
	}, nil
}

// Submit records a pending contribution backed by a previously uploaded receipt.
func (s *ContributionService) Submit(ctx context.Context, amount float64, name, phone, receiptRef string) (string, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	receiptRef = strings.TrimSpace(receiptRef)

	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return "", errs.Validation("amount must be greater than zero")
	}
	if name == "" {
		return "", errs.Validation("contributor name is required")
	}
	if receiptRef == "" {
		return "", errs.Validation("receipt reference is required")
	}
	ok, err := s.blobs.Exists(ctx, receiptRef)
	if err != nil {
		return "", errs.Storage(err, "check receipt")
	}
	if !ok {
		return "", errs.Validation("receipt %s was not uploaded", receiptRef)
	}

	c := &models.Contribution{
		ContributorName: name,
		Amount:          amount,
		ReceiptRef:      receiptRef,
	}
	if phone != "" {
		c.ContributorPhone = &phone
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return "", errs.Storage(err, "create contribution")
	}
	return c.ID, nil
}

func (s *ContributionService) Get(ctx context.Context, id string) (*models.Contribution, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errs.FromDB(err, "contribution")
	}
	return c, nil
}

// PixKey returns the off-band payment key shown next to the contribution form.
func (s *ContributionService) PixKey(ctx context.Context) (string, error) {
	cfg, err := s.eventRepo.Get(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", errs.NotFound("event is not configured")
	}
	if err != nil {
		return "", errs.Storage(err, "load event config")
	}
	return cfg.PixKey, nil
}

// List returns every contribution with its receipt resolved to a URL.
func (s *ContributionService) List(ctx context.Context) ([]models.ContributionView, error) {
	cs, err := s.repo.List(ctx)
	if err != nil {
		return nil, errs.Storage(err, "list contributions")
	}
	out := make([]models.ContributionView, 0, len(cs))
	for _, c := range cs {
		out = append(out, models.ContributionView{
			Contribution: c,
			ReceiptURL:   s.blobs.Resolve(c.ReceiptRef),
		})
	}
	return out, nil
}
