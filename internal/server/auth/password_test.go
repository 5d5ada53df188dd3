package auth

import (
	"testing"

	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.NoError(t, CheckPassword(hash, "correct horse"))
	assert.ErrorIs(t, CheckPassword(hash, "battery staple"), common.ErrorUnauthorized)
}

func TestHashPassword_TooShort(t *testing.T) {
	_, err := HashPassword("abc")
	assert.ErrorIs(t, err, common.ErrorInvalidArgument)
}
