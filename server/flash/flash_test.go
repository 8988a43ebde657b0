package flash_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/gatekeeper/server/flash"
	"github.com/stretchr/testify/require"
)

const testSecret = "flash-test-secret"

func newStore(t *testing.T, secret string) *flash.Store {
	t.Helper()
	s, err := flash.NewStore(secret, false)
	require.NoError(t, err)
	return s
}

func cookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == flash.CookieName {
			return c
		}
	}
	return nil
}

func TestNewStore_RequiresSecret(t *testing.T) {
	_, err := flash.NewStore("", false)
	require.Error(t, err)
}

func TestAddAndPop(t *testing.T) {
	s := newStore(t, testSecret)

	rec := httptest.NewRecorder()
	s.Add(rec, httptest.NewRequest(http.MethodPost, "/sign-user", nil),
		flash.Success("User created"),
		flash.Success("Log in to continue"),
	)
	cookie := cookieFrom(t, rec)
	require.NotNil(t, cookie)
	require.True(t, cookie.HttpOnly)
	require.NotContains(t, cookie.Value, "User created")

	r := httptest.NewRequest(http.MethodGet, "/login/", nil)
	r.AddCookie(cookie)
	out := httptest.NewRecorder()
	messages := s.Pop(out, r)

	require.Equal(t, []flash.Message{
		{Kind: flash.KindSuccess, Text: "User created"},
		{Kind: flash.KindSuccess, Text: "Log in to continue"},
	}, messages)
	require.Equal(t, -1, cookieFrom(t, out).MaxAge)
}

func TestAdd_AppendsToPending(t *testing.T) {
	s := newStore(t, testSecret)

	first := httptest.NewRecorder()
	s.Add(first, httptest.NewRequest(http.MethodGet, "/", nil), flash.Error("one"))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookieFrom(t, first))
	second := httptest.NewRecorder()
	s.Add(second, r, flash.Error("two"))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookieFrom(t, second))
	messages := s.Pop(httptest.NewRecorder(), next)
	require.Len(t, messages, 2)
	require.Equal(t, "two", messages[1].Text)
}

func TestAdd_KeepsNewestMessages(t *testing.T) {
	s := newStore(t, testSecret)

	batch := make([]flash.Message, 0, 12)
	for i := 0; i < 12; i++ {
		batch = append(batch, flash.Error(string(rune('a'+i))))
	}
	rec := httptest.NewRecorder()
	s.Add(rec, httptest.NewRequest(http.MethodGet, "/", nil), batch...)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookieFrom(t, rec))
	messages := s.Pop(httptest.NewRecorder(), r)
	require.Len(t, messages, 10)
	require.Equal(t, "c", messages[0].Text)
	require.Equal(t, "l", messages[9].Text)
}

func TestAdd_DropsInvalid(t *testing.T) {
	s := newStore(t, testSecret)

	rec := httptest.NewRecorder()
	s.Add(rec, httptest.NewRequest(http.MethodGet, "/", nil),
		flash.Message{Kind: "warning", Text: "nope"},
		flash.Error("   "),
	)
	require.Nil(t, cookieFrom(t, rec))
}

func TestPop_RejectsForgedCookies(t *testing.T) {
	s := newStore(t, testSecret)

	t.Run("unsigned value", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: flash.CookieName, Value: "W3sia2luZCI6InN1Y2Nlc3MiLCJ0ZXh0IjoiaGkifV0"})
		out := httptest.NewRecorder()
		require.Empty(t, s.Pop(out, r))
		require.Equal(t, -1, cookieFrom(t, out).MaxAge)
	})

	t.Run("signed with another secret", func(t *testing.T) {
		other := newStore(t, "someone-elses-secret")
		rec := httptest.NewRecorder()
		other.Add(rec, httptest.NewRequest(http.MethodGet, "/", nil), flash.Success("you won"))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(cookieFrom(t, rec))
		require.Empty(t, s.Pop(httptest.NewRecorder(), r))
	})

	t.Run("no cookie", func(t *testing.T) {
		out := httptest.NewRecorder()
		require.Nil(t, s.Pop(out, httptest.NewRequest(http.MethodGet, "/", nil)))
		require.Nil(t, cookieFrom(t, out))
	})
}
