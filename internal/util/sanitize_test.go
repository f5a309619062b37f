package util

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	t.Parallel()

	t.Run("trims and strips invisible characters", func(t *testing.T) {
		require.Equal(t, "Ada", SanitizeName("  A\u200Bda\t "))
	})

	t.Run("empty stays empty", func(t *testing.T) {
		require.Equal(t, "", SanitizeName(" \u200B "))
	})

	t.Run("truncates by runes", func(t *testing.T) {
		actual := SanitizeName(strings.Repeat("é", 80))
		require.True(t, utf8.ValidString(actual))
		require.Equal(t, 50, utf8.RuneCountInString(actual))
	})
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	require.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.COM "))
}
