package smtp

import (
	"strings"
	"testing"
	"time"

	"github.com/nitinder-api/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestBuildMessage_HeadersAndCRLFBody(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	msg := string(buildMessage("noreply@nitinder.app", "bob.ece.23@nitj.ac.in", "Your code", "line1\nline2", at))

	assert.True(t, strings.HasPrefix(msg, "From: noreply@nitinder.app\r\nTo: bob.ece.23@nitj.ac.in\r\nSubject: Your code\r\n"))
	assert.Contains(t, msg, "Date: Fri, 02 Jan 2026 03:04:05 +0000\r\n")
	assert.Contains(t, msg, "Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	assert.True(t, strings.HasSuffix(msg, "line1\r\nline2"))
}

func TestNewMailer_NoHost_UsesLogMailer(t *testing.T) {
	m := NewMailer(&config.Config{})
	_, ok := m.(logMailer)
	assert.True(t, ok)
	assert.NoError(t, m.SendEmail("a@b.c", "s", "b"))
}

func TestNewMailer_WithHost(t *testing.T) {
	m := NewMailer(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: "587"})
	sm, ok := m.(*mailer)
	assert.True(t, ok)
	assert.Equal(t, "smtp.example.com:587", sm.addr)
}
