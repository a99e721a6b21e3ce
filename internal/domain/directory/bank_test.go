package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBank(t *testing.T) {
	t.Run("creates an active bank", func(t *testing.T) {
		bank, err := NewBank("Banco de Venezuela", "0102")
		require.NoError(t, err)
		assert.Equal(t, "Banco de Venezuela", bank.Name)
		assert.Equal(t, "0102", bank.Code)
		assert.True(t, bank.Active)
	})

	t.Run("trims whitespace", func(t *testing.T) {
		bank, err := NewBank("  Banesco  ", " 0134 ")
		require.NoError(t, err)
		assert.Equal(t, "Banesco", bank.Name)
		assert.Equal(t, "0134", bank.Code)
	})

	t.Run("requires a name", func(t *testing.T) {
		_, err := NewBank("", "0102")
		require.Error(t, err)
	})

	t.Run("rejects malformed codes", func(t *testing.T) {
		for _, code := range []string{"", "12", "12345", "01a2"} {
			_, err := NewBank("Banco", code)
			require.Error(t, err, "code %q", code)
		}
	})
}

func TestBankDeactivate(t *testing.T) {
	bank, err := NewBank("Banco Mercantil", "0105")
	require.NoError(t, err)
	bank.Deactivate()
	assert.False(t, bank.Active)
}
