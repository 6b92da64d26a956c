package lanterncrypto

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	SetScryptWorkFactor(10) // Fast for tests
	os.Exit(m.Run())
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	t.Parallel()

	plaintext := []byte("the quick brown fox")
	ciphertext, err := Encrypt(plaintext, "123456")
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := Decrypt(ciphertext, "123456")
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestDecrypt_WrongPassword(t *testing.T) {
	t.Parallel()

	ciphertext, err := Encrypt([]byte("secret"), "123456")
	require.NoError(t, err)

	_, err = Decrypt(ciphertext, "654321")
	assert.Error(t, err)
}

func TestDecrypt_Garbage(t *testing.T) {
	t.Parallel()

	_, err := Decrypt([]byte("not an age file"), "123456")
	assert.Error(t, err)
}

func TestEncrypt_EmptyPlaintext(t *testing.T) {
	t.Parallel()

	ciphertext, err := Encrypt(nil, "123456")
	require.NoError(t, err)

	decrypted, err := Decrypt(ciphertext, "123456")
	require.NoError(t, err)
	assert.Empty(t, decrypted)
}

func TestDecryptSecure(t *testing.T) {
	t.Parallel()

	ciphertext, err := Encrypt([]byte("seed material"), "9999")
	require.NoError(t, err)

	sb, err := DecryptSecure(ciphertext, "9999")
	require.NoError(t, err)
	defer sb.Destroy()

	assert.Equal(t, []byte("seed material"), sb.Bytes())
}
