package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/induskill/marketplace-api/internal/service"
	"github.com/induskill/marketplace-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactService_Submit(t *testing.T) {
	s := setupServices(t)

	dto, err := s.contact.Submit(context.Background(), &domain.CreateContactMessageRequest{
		Name:    "  Priya  ",
		Email:   "priya@example.com",
		Subject: "Batch dates",
		Message: "When does the next welding batch start?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Priya", dto.Name)
	assert.Equal(t, domain.ContactStatusNew, dto.Status)
	assert.Nil(t, dto.RepliedAt)
}

func TestContactService_SubmitRequiresFields(t *testing.T) {
	s := setupServices(t)

	_, err := s.contact.Submit(context.Background(), &domain.CreateContactMessageRequest{
		Name:    "Priya",
		Email:   "priya@example.com",
		Subject: "   ",
		Message: "Hello",
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestContactService_ListIsAdminOnly(t *testing.T) {
	s := setupServices(t)
	testutil.CreateTestMessage(t, s.db, "One")
	read := testutil.CreateTestMessage(t, s.db, "Two")
	require.NoError(t, s.db.Model(read).Update("status", domain.ContactStatusRead).Error)

	_, err := s.contact.List(asUser("user_student", domain.RoleStudent), 1, 10, nil)
	assert.ErrorIs(t, err, service.ErrForbidden)

	resp, err := s.contact.List(asAdmin(), 1, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)

	status := domain.ContactStatusNew
	resp, err = s.contact.List(asAdmin(), 1, 10, &status)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)

	bogus := domain.ContactStatus("spam")
	_, err = s.contact.List(asAdmin(), 1, 10, &bogus)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestContactService_MarkStatus(t *testing.T) {
	s := setupServices(t)
	msg := testutil.CreateTestMessage(t, s.db, "Batch dates")

	dto, err := s.contact.MarkStatus(asAdmin(), msg.ID, domain.ContactStatusRead)
	require.NoError(t, err)
	assert.Equal(t, domain.ContactStatusRead, dto.Status)

	_, err = s.contact.MarkStatus(asAdmin(), uuid.New(), domain.ContactStatusRead)
	assert.ErrorIs(t, err, service.ErrMessageNotFound)
}

func TestContactService_Reply(t *testing.T) {
	s := setupServices(t)
	msg := testutil.CreateTestMessage(t, s.db, "Batch dates")

	dto, err := s.contact.Reply(asAdmin(), msg.ID, &domain.ReplyContactMessageRequest{Body: "Next batch starts on the 5th."})
	require.NoError(t, err)
	assert.Equal(t, domain.ContactStatusReplied, dto.Status)
	assert.NotNil(t, dto.RepliedAt)

	require.Len(t, s.mail.sent, 1)
	assert.Equal(t, "priya@example.com", s.mail.sent[0].To)
	assert.Equal(t, "Re: Batch dates", s.mail.sent[0].Subject)
	assert.Contains(t, s.mail.sent[0].HTMLBody, "Next batch starts on the 5th.")
}

func TestContactService_ReplyMailFailureKeepsStatus(t *testing.T) {
	s := setupServices(t)
	msg := testutil.CreateTestMessage(t, s.db, "Batch dates")
	s.mail.err = errors.New("smtp down")

	_, err := s.contact.Reply(asAdmin(), msg.ID, &domain.ReplyContactMessageRequest{Body: "Hi"})
	assert.ErrorContains(t, err, "smtp down")

	var stored domain.ContactMessage
	require.NoError(t, s.db.First(&stored, "id = ?", msg.ID).Error)
	assert.Equal(t, domain.ContactStatusNew, stored.Status)
}
