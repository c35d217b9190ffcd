package mail

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var product = Product{Name: "auth-service", URL: "http://localhost:3330/"}

func TestWelcomeMessage(t *testing.T) {
	msg, err := WelcomeMessage(product, "alice@example.com", "alice smith")
	require.NoError(t, err)

	require.Equal(t, "alice@example.com", msg.To)
	require.Equal(t, "Create account", msg.Subject)
	require.Contains(t, msg.HTML, "alice smith")
	require.Contains(t, msg.HTML, product.Name)
}

func TestPasswordResetMessageCarriesPassword(t *testing.T) {
	msg, err := PasswordResetMessage(product, "alice@example.com", "alice smith", "n3w-p4ss")
	require.NoError(t, err)

	require.Equal(t, "Reset Your Password", msg.Subject)
	require.Contains(t, msg.Text, "n3w-p4ss")
	require.Contains(t, msg.HTML, "n3w-p4ss")
}

func TestBodyEscapesHTML(t *testing.T) {
	msg, err := WelcomeMessage(product, "alice@example.com", `<script>alert(1)</script>`)
	require.NoError(t, err)
	require.NotContains(t, msg.HTML, "<script>")
}
