package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_MessageSource(t *testing.T) {
	t.Parallel()

	s := NewMessageSource("en")

	t.Run("known code", func(t *testing.T) {
		got := s.Message(CodeBadCredentials)

		assert.Equal(t, "Invalid email or password", got)
	})

	t.Run("unknown code returned as is", func(t *testing.T) {
		got := s.Message("NO_SUCH_CODE")

		assert.Equal(t, "NO_SUCH_CODE", got)
	})

	t.Run("unparseable default locale falls back to english", func(t *testing.T) {
		broken := NewMessageSource("???")

		got := broken.Message(CodeNotFound)

		assert.Equal(t, "Requested resource not found", got)
	})

	t.Run("accept language header", func(t *testing.T) {
		got := s.MessageForRequest("en-US,en;q=0.9", CodeTokenExpired)

		assert.Equal(t, "Token is expired", got)
	})

	t.Run("empty header uses default", func(t *testing.T) {
		got := s.MessageForRequest("", CodeTokenExpired)

		assert.Equal(t, "Token is expired", got)
	})

	t.Run("unknown language falls back", func(t *testing.T) {
		got := s.MessageForRequest("xx-klingon", CodeTokenExpired)

		assert.Equal(t, "Token is expired", got)
	})
}
