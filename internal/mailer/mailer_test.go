package mailer_test

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/induskill/marketplace-api/internal/config"
	"github.com/induskill/marketplace-api/internal/mailer"
	"github.com/scorredoira/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSMTPMailer_SkipsWithoutHost(t *testing.T) {
	called := false
	send := func(string, smtp.Auth, *email.Message) error {
		called = true
		return nil
	}
	m := mailer.NewSMTPMailerWithSender(&config.MailConfig{}, send, zap.NewNop())

	err := m.Send(context.Background(), mailer.Message{To: "a@example.com", Subject: "hi", HTMLBody: "<p>x</p>"})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestSMTPMailer_Send(t *testing.T) {
	var gotAddr string
	var gotMsg *email.Message
	send := func(addr string, _ smtp.Auth, m *email.Message) error {
		gotAddr = addr
		gotMsg = m
		return nil
	}
	cfg := &config.MailConfig{
		Host:        "smtp.example.com",
		Port:        587,
		Username:    "mailer",
		Password:    "secret",
		FromName:    "InduSkill",
		FromAddress: "no-reply@induskill.io",
	}
	m := mailer.NewSMTPMailerWithSender(cfg, send, zap.NewNop())

	err := m.Send(context.Background(), mailer.Message{To: "Priya <priya@example.com>", Subject: "Re: Batch dates", HTMLBody: "<p>Yes</p>"})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	require.NotNil(t, gotMsg)
	assert.Equal(t, []string{"priya@example.com"}, gotMsg.To)
	assert.Equal(t, "no-reply@induskill.io", gotMsg.From.Address)
	assert.Equal(t, "Re: Batch dates", gotMsg.Subject)
}

func TestSMTPMailer_SendError(t *testing.T) {
	send := func(string, smtp.Auth, *email.Message) error { return errors.New("connection refused") }
	m := mailer.NewSMTPMailerWithSender(&config.MailConfig{Host: "smtp.example.com", Port: 25}, send, zap.NewNop())

	err := m.Send(context.Background(), mailer.Message{To: "priya@example.com", Subject: "x"})
	assert.ErrorContains(t, err, "connection refused")
}

func TestSMTPMailer_InvalidRecipient(t *testing.T) {
	m := mailer.NewSMTPMailerWithSender(&config.MailConfig{Host: "smtp.example.com", Port: 25}, nil, zap.NewNop())
	err := m.Send(context.Background(), mailer.Message{To: "not an address"})
	assert.Error(t, err)
}

func TestReplyBody_EscapesInput(t *testing.T) {
	body := mailer.ReplyBody("<b>Priya</b>", "Line one\nLine two", "original <script>", "InduSkill")
	assert.Contains(t, body, "&lt;b&gt;Priya&lt;/b&gt;")
	assert.Contains(t, body, "Line one<br>Line two")
	assert.NotContains(t, body, "<script>")
}
