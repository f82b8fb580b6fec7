package jwt

import (
	"context"
	"testing"
	"time"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/app"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopResponder struct{}

func (nopResponder) Token(*app.RequestContext, string, time.Time) {}
func (nopResponder) Fail(*app.RequestContext, error)              {}

func initForTest(t *testing.T) {
	t.Helper()
	login := func(context.Context, *app.RequestContext) (*model.Identity, error) {
		return &model.Identity{ID: 1, Role: "user"}, nil
	}
	require.NoError(t, Init("test-secret", time.Hour, 2*time.Hour, login, nopResponder{}))
}

func TestGenerateAndParseToken(t *testing.T) {
	initForTest(t)

	// 大于2^53的ID也不能丢失精度
	want := &model.Identity{ID: 1844674407370955161, Role: "admin"}
	token, expire, err := GenerateToken(want)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expire, time.Minute)

	got, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseTokenFailures(t *testing.T) {
	initForTest(t)

	t.Run("empty", func(t *testing.T) {
		_, err := ParseToken("")
		assert.True(t, errors.Is(err, errno.AuthErr))
	})

	t.Run("expired is distinct from invalid", func(t *testing.T) {
		expired := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
			"id":  "5",
			"exp": time.Now().Add(-time.Minute).Unix(),
		})
		s, err := expired.SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = ParseToken(s)
		assert.True(t, errors.Is(err, errno.TokenExpiredErr))
	})

	t.Run("bad signature carries detail", func(t *testing.T) {
		forged := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
			"id":  "5",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		s, err := forged.SignedString([]byte("another-secret"))
		require.NoError(t, err)
		_, err = ParseToken(s)
		require.True(t, errors.Is(err, errno.TokenInvalidErr))
		en := errno.ConvertErr(err)
		assert.NotEmpty(t, en.Detail)
	})

	t.Run("missing id claim", func(t *testing.T) {
		tok := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		s, err := tok.SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = ParseToken(s)
		assert.True(t, errors.Is(err, errno.TokenInvalidErr))
	})
}

func TestExtractBearer(t *testing.T) {
	assert.Equal(t, "abc", ExtractBearer("Bearer abc"))
	assert.Equal(t, "abc", ExtractBearer("bearer  abc "))
	assert.Equal(t, "", ExtractBearer("Basic abc"))
	assert.Equal(t, "", ExtractBearer(""))
}
