// Package wallet holds the HD wallet that signs mintctl calls.
//
// Key hierarchy: m/44'/236'/0'/0/{account}. Account 0 is the engine
// administrator; higher accounts are buyers. The seed is stored on disk
// encrypted with Argon2id + AES-256-GCM.
package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bsv-blockchain/go-sdk/compat/bip39"
	"golang.org/x/crypto/argon2"
)

const (
	// Mnemonic entropy sizes.
	Mnemonic12Words = 128
	Mnemonic24Words = 256

	// Argon2id parameters for seed encryption.
	Argon2Time        = 3
	Argon2Memory      = 64 * 1024 // 64 MB
	Argon2Parallelism = 4
	Argon2KeyLen      = 32

	// Encryption format sizes.
	SaltLen     = 16
	NonceLen    = 12
	ChecksumLen = 4

	// WalletFileName is the encrypted seed file inside the data directory.
	WalletFileName = "wallet.enc"
)

// GenerateMnemonic creates a BIP39 mnemonic of Mnemonic12Words or Mnemonic24Words entropy.
func GenerateMnemonic(entropyBits int) (string, error) {
	if entropyBits != Mnemonic12Words && entropyBits != Mnemonic24Words {
		return "", ErrInvalidEntropy
	}
	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", fmt.Errorf("wallet: generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("wallet: generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// ValidateMnemonic checks if a mnemonic string is valid BIP39.
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// SeedFromMnemonic derives the 64-byte BIP39 seed. An empty passphrase still
// participates in derivation.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	if !ValidateMnemonic(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("wallet: derive seed: %w", err)
	}
	return seed, nil
}

// seedAEAD returns the AES-256-GCM cipher keyed by argon2id(password, salt).
func seedAEAD(password string, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey([]byte(password), salt, Argon2Time, Argon2Memory, Argon2Parallelism, Argon2KeyLen)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func seedChecksum(seed []byte) []byte {
	sum := sha256.Sum256(seed)
	return sum[:ChecksumLen]
}

// EncryptSeed encrypts the seed for storage.
//
// Output format: salt(16B) || nonce(12B) || AES-GCM(seed || SHA256(seed)[:4])
func EncryptSeed(seed []byte, password string) ([]byte, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}

	out := make([]byte, SaltLen+NonceLen, SaltLen+NonceLen+len(seed)+ChecksumLen+16)
	if _, err := rand.Read(out); err != nil {
		return nil, fmt.Errorf("wallet: generate salt and nonce: %w", err)
	}
	salt, nonce := out[:SaltLen], out[SaltLen:SaltLen+NonceLen]

	aead, err := seedAEAD(password, salt)
	if err != nil {
		return nil, fmt.Errorf("wallet: init cipher: %w", err)
	}

	plaintext := append(append([]byte{}, seed...), seedChecksum(seed)...)
	return aead.Seal(out, nonce, plaintext, nil), nil
}

// DecryptSeed reverses EncryptSeed. A wrong password yields ErrDecryptionFailed.
func DecryptSeed(encrypted []byte, password string) ([]byte, error) {
	if len(encrypted) < SaltLen+NonceLen+ChecksumLen {
		return nil, ErrDecryptionFailed
	}
	salt := encrypted[:SaltLen]
	nonce := encrypted[SaltLen : SaltLen+NonceLen]
	ciphertext := encrypted[SaltLen+NonceLen:]

	aead, err := seedAEAD(password, salt)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil || len(plaintext) < ChecksumLen {
		return nil, ErrDecryptionFailed
	}

	seed := plaintext[:len(plaintext)-ChecksumLen]
	if subtle.ConstantTimeCompare(plaintext[len(seed):], seedChecksum(seed)) != 1 {
		return nil, ErrChecksumMismatch
	}
	return seed, nil
}

// WalletPath returns the encrypted seed file path inside dataDir.
func WalletPath(dataDir string) string {
	return filepath.Join(dataDir, WalletFileName)
}

// SaveSeed encrypts seed and writes it to path. An existing file is never
// overwritten.
func SaveSeed(path string, seed []byte, password string) error {
	encrypted, err := EncryptSeed(seed, password)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("wallet: create directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrWalletExists, path)
		}
		return fmt.Errorf("wallet: create %s: %w", path, err)
	}
	if _, err := f.Write(encrypted); err != nil {
		_ = f.Close()
		return fmt.Errorf("wallet: write %s: %w", path, err)
	}
	return f.Close()
}

// LoadSeed reads and decrypts the seed stored at path.
func LoadSeed(path, password string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, path)
		}
		return nil, fmt.Errorf("wallet: read %s: %w", path, err)
	}
	return DecryptSeed(data, password)
}
