package email

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	svc := NewEmailService(Config{Host: "smtp.example.com", Username: "portal@example.com", Password: "pw"})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	svc.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err := svc.Send(context.Background(), Message{
		To:      "sam.lee@example.com",
		Subject: "Your interview login",
		Text:    "Username: sam.lee\nPassword: <abc>",
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "portal@example.com", gotFrom)
	assert.Equal(t, []string{"sam.lee@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "To: sam.lee@example.com\r\n")
	assert.Contains(t, string(gotMsg), "Username: sam.lee")
	// Text is HTML escaped.
	assert.Contains(t, string(gotMsg), "&lt;abc&gt;")
}

func TestSend_Rejections(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		svc := NewEmailService(Config{})
		assert.False(t, svc.IsConfigured())
		assert.Error(t, svc.Send(context.Background(), Message{To: "a@b.co"}))
	})

	t.Run("header injection", func(t *testing.T) {
		svc := NewEmailService(Config{Host: "h", Username: "u", Password: "p"})
		svc.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
			t.Fatal("must not send")
			return nil
		}
		err := svc.Send(context.Background(), Message{To: "a@b.co\r\nBcc: x@y.z", Subject: "s"})
		assert.Error(t, err)
	})

	t.Run("transport failure is wrapped", func(t *testing.T) {
		svc := NewEmailService(Config{Host: "h", Username: "u", Password: "p"})
		svc.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
			return errors.New("535 auth failed")
		}
		err := svc.Send(context.Background(), Message{To: "a@b.co", Subject: "s"})
		assert.ErrorContains(t, err, "535 auth failed")
	})
}
