package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/induskill/marketplace-api/internal/cache"
	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/induskill/marketplace-api/internal/mapper"
	"github.com/induskill/marketplace-api/internal/repository"
	"go.uber.org/zap"
)

type PartnerService struct {
	partnerRepo *repository.PartnerRepository
	invalidator *cache.CatalogInvalidator
	logger      *zap.Logger
}

func NewPartnerService(partnerRepo *repository.PartnerRepository, invalidator *cache.CatalogInvalidator, logger *zap.Logger) *PartnerService {
	return &PartnerService{
		partnerRepo: partnerRepo,
		invalidator: invalidator,
		logger:      logger,
	}
}

func (s *PartnerService) List(ctx context.Context, page, pageSize int, search, industry string) (*domain.PaginatedResponse, error) {
	page, pageSize = repository.NormalizePagination(page, pageSize)
	partners, total, err := s.partnerRepo.List(ctx, page, pageSize, search, industry)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", translateError(err, ErrPartnerNotFound))
	}

	dtos := make([]domain.PartnerDTO, len(partners))
	for i := range partners {
		dtos[i] = mapper.ToPartnerDTO(&partners[i])
	}

	resp := domain.NewPaginatedResponse(dtos, total, page, pageSize)
	return &resp, nil
}

// Industries lists the distinct industries for the directory filter
func (s *PartnerService) Industries(ctx context.Context) ([]string, error) {
	industries, err := s.partnerRepo.Industries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list industries: %w", translateError(err, ErrPartnerNotFound))
	}
	return industries, nil
}

func (s *PartnerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.PartnerDTO, error) {
	partner, err := s.partnerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get partner: %w", translateError(err, ErrPartnerNotFound))
	}

	dto := mapper.ToPartnerDTO(partner)
	return &dto, nil
}

func (s *PartnerService) Create(ctx context.Context, req *domain.CreatePartnerRequest) (*domain.PartnerDTO, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	partner := &domain.Partner{}
	mapper.ApplyPartnerRequest(partner, req)

	if err := s.partnerRepo.Create(ctx, partner); err != nil {
		return nil, fmt.Errorf("failed to create partner: %w", s.translateWriteError(err))
	}

	s.logger.Info("partner created", zap.String("partner_id", partner.ID.String()), zap.String("name", partner.Name))
	s.invalidateCatalog(ctx)

	dto := mapper.ToPartnerDTO(partner)
	return &dto, nil
}

func (s *PartnerService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdatePartnerRequest) (*domain.PartnerDTO, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	partner, err := s.partnerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get partner: %w", translateError(err, ErrPartnerNotFound))
	}

	mapper.ApplyPartnerRequest(partner, req)
	if err := s.partnerRepo.Update(ctx, partner); err != nil {
		return nil, fmt.Errorf("failed to update partner: %w", s.translateWriteError(err))
	}
	s.invalidateCatalog(ctx)

	dto := mapper.ToPartnerDTO(partner)
	return &dto, nil
}

// Delete removes a partner; its courses stay in the catalog without a partner link
func (s *PartnerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := requireAdmin(ctx); err != nil {
		return err
	}

	if err := s.partnerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete partner: %w", translateError(err, ErrPartnerNotFound))
	}

	s.logger.Info("partner deleted", zap.String("partner_id", id.String()))
	s.invalidateCatalog(ctx)
	return nil
}

func (s *PartnerService) translateWriteError(err error) error {
	err = translateError(err, ErrPartnerNotFound)
	if errors.Is(err, ErrConflict) {
		return ErrPartnerExists
	}
	return err
}

func (s *PartnerService) invalidateCatalog(ctx context.Context) {
	if err := s.invalidator.InvalidateCatalog(ctx); err != nil {
		s.logger.Warn("failed to invalidate catalog cache", zap.Error(err))
	}
}
