package welcome

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	passwordLength   = 16
	passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*"

	// PasswordFileName is written next to the outputs file
	PasswordFileName = "root_password.txt"
)

// GeneratePassword returns a random root password
func GeneratePassword() (string, error) {
	max := big.NewInt(int64(len(passwordAlphabet)))
	b := make([]byte, passwordLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		b[i] = passwordAlphabet[n.Int64()]
	}
	return string(b), nil
}

// SavePassword writes password to dir/root_password.txt readable only by the owner
func SavePassword(appFs afero.Fs, dir, password string) (string, error) {
	path := filepath.Join(dir, PasswordFileName)
	if err := afero.WriteFile(appFs, path, []byte(password), 0600); err != nil {
		return "", fmt.Errorf("failed to write password file: %w", err)
	}
	// WriteFile keeps the mode of an existing file
	if err := appFs.Chmod(path, 0600); err != nil {
		return "", fmt.Errorf("failed to restrict password file: %w", err)
	}
	return path, nil
}
