package auth_test

import (
	"context"
	"testing"

	auth "github.com/ASANIYAN/fin-flow-backend"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFallbackNotifierFirstTransportWins(t *testing.T) {
	primary := &MockNotifier{}
	secondary := &MockNotifier{}

	msg := auth.Email{To: "ada@example.com", Subject: "hi"}

	primary.On("Send", mock.Anything, msg).Return(nil).Once()

	chain := auth.NewFallbackNotifier(primary, secondary).WithLogger(testLogger{})

	err := chain.Send(context.Background(), msg)
	require.NoError(t, err)

	primary.AssertExpectations(t)
	secondary.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestFallbackNotifierFallsThrough(t *testing.T) {
	primary := &MockNotifier{}
	secondary := &MockNotifier{}

	msg := auth.Email{To: "ada@example.com", Subject: "hi"}

	primary.On("Send", mock.Anything, msg).
		Return(goerrors.New("smtp delivery failed", goerrors.CategoryOperation)).Once()
	secondary.On("Send", mock.Anything, msg).Return(nil).Once()

	chain := auth.NewFallbackNotifier(primary, secondary).WithLogger(testLogger{})

	err := chain.Send(context.Background(), msg)
	require.NoError(t, err)

	primary.AssertExpectations(t)
	secondary.AssertExpectations(t)
}

func TestFallbackNotifierAllTransportsFail(t *testing.T) {
	primary := &MockNotifier{}
	secondary := &MockNotifier{}

	msg := auth.Email{To: "ada@example.com", Subject: "hi"}

	primary.On("Send", mock.Anything, msg).
		Return(goerrors.New("smtp delivery failed", goerrors.CategoryOperation)).Once()
	secondary.On("Send", mock.Anything, msg).
		Return(goerrors.New("disk full", goerrors.CategoryOperation)).Once()

	chain := auth.NewFallbackNotifier(primary, secondary).WithLogger(testLogger{})

	err := chain.Send(context.Background(), msg)
	require.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, "NOTIFICATION_FAILED", richErr.TextCode)
	assert.Equal(t, goerrors.CategoryOperation, richErr.Category)
}

func TestFallbackNotifierEmptyChain(t *testing.T) {
	chain := auth.NewFallbackNotifier()

	err := chain.Send(context.Background(), auth.Email{To: "ada@example.com"})
	assert.ErrorIs(t, err, auth.ErrNotificationFailed)
}

func TestLogNotifierAlwaysSucceeds(t *testing.T) {
	n := auth.NewLogNotifier(testLogger{})

	err := n.Send(context.Background(), auth.Email{
		To:      "ada@example.com",
		Subject: "Verify your email",
		HTML:    "<p>hi</p>",
	})
	assert.NoError(t, err)
}

func TestVerificationEmail(t *testing.T) {
	msg := auth.VerificationEmail("https://app.example.com", "ada@example.com", "tok123")

	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, "Verify your email", msg.Subject)
	assert.Contains(t, msg.HTML, "https://app.example.com/verify-email?token=tok123")
}

func TestPasswordResetEmail(t *testing.T) {
	msg := auth.PasswordResetEmail("https://app.example.com", "ada@example.com", "tok123")

	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, "Password Reset Request", msg.Subject)
	assert.Contains(t, msg.HTML, "https://app.example.com/reset-password?token=tok123")
	assert.Contains(t, msg.HTML, "expire in 1 hour")
}
