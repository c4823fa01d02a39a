package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/induskill/marketplace-api/internal/mailer"
	"github.com/induskill/marketplace-api/internal/mapper"
	"github.com/induskill/marketplace-api/internal/repository"
	"go.uber.org/zap"
)

type ContactService struct {
	messageRepo *repository.ContactMessageRepository
	mailer      mailer.Mailer
	siteName    string
	logger      *zap.Logger
}

func NewContactService(
	messageRepo *repository.ContactMessageRepository,
	m mailer.Mailer,
	siteName string,
	logger *zap.Logger,
) *ContactService {
	return &ContactService{
		messageRepo: messageRepo,
		mailer:      m,
		siteName:    siteName,
		logger:      logger,
	}
}

// Submit stores a message from the public contact form
func (s *ContactService) Submit(ctx context.Context, req *domain.CreateContactMessageRequest) (*domain.ContactMessageDTO, error) {
	msg := &domain.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
		Status:  domain.ContactStatusNew,
	}
	if msg.Name == "" || msg.Email == "" || msg.Subject == "" || msg.Message == "" {
		return nil, fmt.Errorf("%w: name, email, subject and message are required", ErrInvalidInput)
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save contact message: %w", translateError(err, ErrMessageNotFound))
	}

	s.logger.Info("contact message received", zap.String("message_id", msg.ID.String()), zap.String("subject", msg.Subject))

	dto := mapper.ToContactMessageDTO(msg)
	return &dto, nil
}

// List returns the inbox, newest first (admin only)
func (s *ContactService) List(ctx context.Context, page, pageSize int, status *domain.ContactStatus) (*domain.PaginatedResponse, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if status != nil && !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *status)
	}

	page, pageSize = repository.NormalizePagination(page, pageSize)
	msgs, total, err := s.messageRepo.List(ctx, page, pageSize, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", translateError(err, ErrMessageNotFound))
	}

	resp := domain.NewPaginatedResponse(mapper.ToContactMessageDTOs(msgs), total, page, pageSize)
	return &resp, nil
}

func (s *ContactService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContactMessageDTO, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get contact message: %w", translateError(err, ErrMessageNotFound))
	}

	dto := mapper.ToContactMessageDTO(msg)
	return &dto, nil
}

// MarkStatus moves a message between new, read and replied (admin only)
func (s *ContactService) MarkStatus(ctx context.Context, id uuid.UUID, status domain.ContactStatus) (*domain.ContactMessageDTO, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	if err := s.messageRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update contact message: %w", translateError(err, ErrMessageNotFound))
	}

	return s.GetByID(ctx, id)
}

// Reply emails the sender and marks the message replied (admin only)
func (s *ContactService) Reply(ctx context.Context, id uuid.UUID, req *domain.ReplyContactMessageRequest) (*domain.ContactMessageDTO, error) {
	user, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Body) == "" {
		return nil, fmt.Errorf("%w: reply body is required", ErrInvalidInput)
	}

	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get contact message: %w", translateError(err, ErrMessageNotFound))
	}

	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = "Re: " + msg.Subject
	}

	err = s.mailer.Send(ctx, mailer.Message{
		To:       msg.Email,
		Subject:  subject,
		HTMLBody: mailer.ReplyBody(msg.Name, req.Body, msg.Message, s.siteName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send reply: %w", err)
	}

	if err := s.messageRepo.UpdateStatus(ctx, id, domain.ContactStatusReplied); err != nil {
		return nil, fmt.Errorf("failed to update contact message: %w", translateError(err, ErrMessageNotFound))
	}

	s.logger.Info("contact message replied", zap.String("message_id", id.String()), zap.String("user_id", user.UserID))
	return s.GetByID(ctx, id)
}
