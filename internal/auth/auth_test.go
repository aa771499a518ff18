package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUp(t *testing.T) {
	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("CreatesPersonAndSession", func(t *testing.T) {
		gateway := newFakeGateway()
		svc := newTestService(gateway, issuedAt)

		person, session, err := svc.SignUp(context.Background(), SignUpInput{
			Email:    "  New@Example.COM ",
			Password: "long enough password",
		})
		require.NoError(t, err)

		assert.Equal(t, "new@example.com", person.Email, "email is normalized before storage")
		assert.Equal(t, person.Key, session.PersonKey)
		assert.Equal(t, issuedAt.Add(30*24*time.Hour), session.ExpiresAt)

		// The stored digest must verify, and must not be the plaintext.
		digest, err := gateway.GetPasswordDigest(context.Background(), person.Key)
		require.NoError(t, err)
		assert.NotEqual(t, []byte("long enough password"), digest)
		assert.True(t, VerifyPassword("long enough password", digest))
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		gateway := newFakeGateway()
		svc := newTestService(gateway, issuedAt)

		_, _, err := svc.SignUp(context.Background(), SignUpInput{Email: "dup@example.com", Password: "long enough password"})
		require.NoError(t, err)

		// Same address with different case still collides.
		_, _, err = svc.SignUp(context.Background(), SignUpInput{Email: "DUP@example.com", Password: "long enough password"})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("RejectsMalformedInput", func(t *testing.T) {
		svc := newTestService(newFakeGateway(), issuedAt)

		_, _, err := svc.SignUp(context.Background(), SignUpInput{Email: "not-an-email", Password: "short"})
		var fieldErrs FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Contains(t, fieldErrs, "email")
		assert.Contains(t, fieldErrs, "password")
	})
}

func TestSignIn(t *testing.T) {
	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("CorrectCredentials", func(t *testing.T) {
		gateway := newFakeGateway()
		gateway.addPerson(t, "user@example.com", "correct horse battery")
		svc := newTestService(gateway, issuedAt)

		person, session, err := svc.SignIn(context.Background(), SignInInput{
			Email:    "User@Example.com",
			Password: "correct horse battery",
		})
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", person.Email)
		assert.NotEmpty(t, session.Token)
		assert.Contains(t, gateway.sessions, session.Token)
	})

	t.Run("UnknownEmailAndWrongPasswordLookAlike", func(t *testing.T) {
		gateway := newFakeGateway()
		gateway.addPerson(t, "user@example.com", "correct horse battery")
		svc := newTestService(gateway, issuedAt)

		_, _, unknownErr := svc.SignIn(context.Background(), SignInInput{
			Email:    "missing@example.com",
			Password: "correct horse battery",
		})
		_, _, wrongErr := svc.SignIn(context.Background(), SignInInput{
			Email:    "user@example.com",
			Password: "wrong password entirely",
		})

		assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
		assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
		assert.Equal(t, unknownErr.Error(), wrongErr.Error(), "failures must not reveal which accounts exist")
	})

	t.Run("NoSessionOnFailure", func(t *testing.T) {
		gateway := newFakeGateway()
		gateway.addPerson(t, "user@example.com", "correct horse battery")
		svc := newTestService(gateway, issuedAt)

		_, _, err := svc.SignIn(context.Background(), SignInInput{
			Email:    "user@example.com",
			Password: "wrong password entirely",
		})
		require.Error(t, err)
		assert.Empty(t, gateway.sessions)
	})
}

func TestSignOut(t *testing.T) {
	gateway := newFakeGateway()
	person := gateway.addPerson(t, "out@example.com", "correct horse battery")
	svc := newTestService(gateway, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	session, err := svc.IssueSession(context.Background(), person.Key)
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(context.Background(), session.Token))
	assert.NotContains(t, gateway.sessions, session.Token)

	// Repeats and blanks are safe.
	assert.NoError(t, svc.SignOut(context.Background(), session.Token))
	assert.NoError(t, svc.SignOut(context.Background(), ""))
}
