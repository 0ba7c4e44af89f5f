package cookiejar

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/pbkdf2"

	_ "modernc.org/sqlite"
)

// KeychainProvider resolves the AES key Chromium-family browsers store in
// the OS keychain to encrypt cookie values. 1Password/keychain access is an
// opaque, out-of-scope credential provider from this module's point of
// view: the only implementation, unavailableKeychain, always fails, so
// encrypted cookies are skipped with a warning. Config has no field for
// supplying another provider.
type KeychainProvider interface {
	Key(service string) ([]byte, error)
}

type unavailableKeychain struct{}

func (unavailableKeychain) Key(service string) ([]byte, error) {
	return nil, errors.New("cookiejar: OS keychain access not wired for " + service)
}

// chromiumEpoch is the Windows/Chromium epoch (1601-01-01) that
// expires_utc/creation columns are measured against, in microseconds.
var chromiumEpoch = time.Date(1601, 1, 1, 0, 0, 0, 0, time.UTC)

func extractChromiumFamily(source Source, cfg Config) ([]Cookie, error) {
	dbPath := chromiumProfilePath(source)
	if dbPath == "" {
		return nil, nil
	}
	if _, err := os.Stat(dbPath); err != nil {
		return nil, nil
	}

	tmpPath, cleanup, err := copyLockedSQLite(dbPath)
	if err != nil {
		return nil, fmt.Errorf("cookiejar: copying %s cookie db: %w", source, err)
	}
	defer cleanup()

	db, err := sql.Open("sqlite", tmpPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`SELECT host_key, name, value, encrypted_value, path, is_secure, is_httponly, expires_utc FROM cookies`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	kc := unavailableKeychain{}
	var provider KeychainProvider = kc
	service := keychainServiceName(source)
	var key []byte
	if service != "" {
		if k, err := provider.Key(service); err == nil {
			key = deriveChromiumKey(k)
		}
	}

	var out []Cookie
	skippedEncrypted := 0
	for rows.Next() {
		var host, name, value, path string
		var encrypted []byte
		var secure, httpOnly int
		var expiresUTC int64
		if err := rows.Scan(&host, &name, &value, &encrypted, &path, &secure, &httpOnly, &expiresUTC); err != nil {
			continue
		}
		if value == "" && len(encrypted) > 0 {
			plain, err := decryptChromiumValue(encrypted, key)
			if err != nil {
				skippedEncrypted++
				continue
			}
			value = plain
		}
		var expiresPtr *time.Time
		if expiresUTC > 0 {
			t := chromiumEpoch.Add(time.Duration(expiresUTC) * time.Microsecond)
			expiresPtr = &t
		}
		out = append(out, Cookie{
			Name:     name,
			Value:    value,
			Domain:   host,
			Path:     path,
			Secure:   secure != 0,
			HTTPOnly: httpOnly != 0,
			Expires:  expiresPtr,
		})
	}
	if skippedEncrypted > 0 {
		cfg.Logger.Warn("cookiejar: skipped encrypted cookies without keychain access",
			"source", source.String(), "count", skippedEncrypted)
	}
	return out, rows.Err()
}

// deriveChromiumKey applies Chromium's PBKDF2 derivation (1 iteration,
// SHA-1, 16-byte key) to the keychain-provided password.
func deriveChromiumKey(password []byte) []byte {
	return pbkdf2.Key(password, []byte("saltysalt"), 1, 16, sha1.New)
}

// decryptChromiumValue reverses Chromium's "v10"/"v11" cookie encryption:
// AES-128-CBC with a fixed IV of 16 spaces, after stripping the 3-byte
// version prefix.
func decryptChromiumValue(encrypted, key []byte) (string, error) {
	if key == nil {
		return "", errors.New("cookiejar: no key available")
	}
	if len(encrypted) < 3 {
		return "", errors.New("cookiejar: encrypted value too short")
	}
	prefix := string(encrypted[:3])
	if prefix != "v10" && prefix != "v11" {
		return "", fmt.Errorf("cookiejar: unrecognized encryption prefix %q", prefix)
	}
	ciphertext := encrypted[3:]
	if len(ciphertext)%aes.BlockSize != 0 {
		return "", errors.New("cookiejar: ciphertext not block-aligned")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	iv := make([]byte, aes.BlockSize)
	for i := range iv {
		iv[i] = ' '
	}
	mode := cipher.NewCBCDecrypter(block, iv)
	plain := make([]byte, len(ciphertext))
	mode.CryptBlocks(plain, ciphertext)
	plain = pkcs7Unpad(plain)
	return string(plain), nil
}

func pkcs7Unpad(b []byte) []byte {
	if len(b) == 0 {
		return b
	}
	pad := int(b[len(b)-1])
	if pad <= 0 || pad > len(b) {
		return b
	}
	return b[:len(b)-pad]
}

// copyLockedSQLite copies dbPath and its WAL/SHM sidecar files to a
// temporary directory so an open browser holding the original file locked
// does not block extraction.
func copyLockedSQLite(dbPath string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "nab-cookiejar-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.RemoveAll(dir) }

	dest := filepath.Join(dir, filepath.Base(dbPath))
	if err := copyFile(dbPath, dest); err != nil {
		cleanup()
		return "", nil, err
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		src := dbPath + suffix
		if _, err := os.Stat(src); err == nil {
			_ = copyFile(src, dest+suffix)
		}
	}
	return dest, cleanup, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}
