package mailer

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWelcomeTemplate(t *testing.T) {
	body, err := renderTemplate("welcome.html", map[string]interface{}{
		"Username": "ana",
	})
	require.NoError(t, err)
	require.Contains(t, body, "ana")
	require.Contains(t, body, "Bienvenido")
}

func TestPasswordResetTemplate(t *testing.T) {
	body, err := renderTemplate("password_reset.html", map[string]interface{}{
		"ResetURL":          "https://app.test/auth/password-reset?token=abc",
		"ExpirationMinutes": 60,
	})
	require.NoError(t, err)
	require.Contains(t, body, "https://app.test/auth/password-reset?token=abc")
	require.Contains(t, body, "60")
}

func TestLogMailer(t *testing.T) {
	m := NewLogMailer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, m.SendWelcomeEmail(context.Background(), "ana@example.com", "ana"))
	require.NoError(t, m.SendPasswordResetEmail(context.Background(), "ana@example.com", "token"))
}
