package users_test

import (
	"strings"
	"testing"

	"github.com/jrsteele09/gatekeeper/users"
	"github.com/stretchr/testify/require"
)

func TestRegistrationForm_Validate(t *testing.T) {
	t.Run("valid at minimum length", func(t *testing.T) {
		form := users.RegistrationForm{Email: "a@x.com", Password: "12345678", ConfirmPassword: "12345678"}
		require.Nil(t, form.Validate())
	})

	t.Run("one below minimum length", func(t *testing.T) {
		form := users.RegistrationForm{Email: "a@x.com", Password: "1234567", ConfirmPassword: "1234567"}
		errs := form.Validate()
		require.Len(t, errs, 1)
		require.Contains(t, errs[0], "at least 8")
	})

	t.Run("collects every violation", func(t *testing.T) {
		form := users.RegistrationForm{Email: "", Password: "short", ConfirmPassword: "different"}
		errs := form.Validate()
		require.Len(t, errs, 3)

		joined := strings.Join(errs, "\n")
		require.Contains(t, joined, "Email")
		require.Contains(t, joined, "at least 8")
		require.Contains(t, joined, "Passwords do not match")
	})

	t.Run("missing password is reported once", func(t *testing.T) {
		form := users.RegistrationForm{Email: "a@x.com"}
		errs := form.Validate()
		require.Len(t, errs, 1)
		require.Contains(t, errs[0], "Password")
	})

	t.Run("mismatch only", func(t *testing.T) {
		form := users.RegistrationForm{Email: "a@x.com", Password: "longenough1", ConfirmPassword: "longenough2"}
		errs := form.Validate()
		require.Equal(t, users.ValidationErrors{"Passwords do not match"}, errs)
	})

	t.Run("multibyte password over the byte limit", func(t *testing.T) {
		password := strings.Repeat("é", 40) // 40 runes, 80 bytes
		form := users.RegistrationForm{Email: "a@x.com", Password: password, ConfirmPassword: password}
		errs := form.Validate()
		require.Equal(t, users.ValidationErrors{"Password must be at most 72 bytes long"}, errs)
	})

	t.Run("multibyte password at the byte limit", func(t *testing.T) {
		password := strings.Repeat("é", users.MaxPasswordBytes/2)
		form := users.RegistrationForm{Email: "a@x.com", Password: password, ConfirmPassword: password}
		require.Nil(t, form.Validate())

		hasher, err := users.NewHasher(users.HasherBcrypt, 4)
		require.NoError(t, err)
		_, err = hasher.Hash(password)
		require.NoError(t, err)
	})
}

func TestRegistrationForm_Normalize(t *testing.T) {
	form := users.RegistrationForm{FullName: "  Ada Lovelace ", Email: " Ada@Example.COM ", Password: " pass word "}
	form.Normalize()

	require.Equal(t, "Ada Lovelace", form.FullName)
	require.Equal(t, "ada@example.com", form.Email)
	require.Equal(t, " pass word ", form.Password)
}

func TestUser_DisplayLabel(t *testing.T) {
	require.Equal(t, "Ada", (&users.User{Email: "ada@example.com", FullName: "Ada"}).DisplayLabel())
	require.Equal(t, "ada@example.com", (&users.User{Email: "ada@example.com", FullName: "  "}).DisplayLabel())
}
