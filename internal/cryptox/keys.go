package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/filex"
	"golang.org/x/crypto/argon2"
)

// Key source kinds accepted by NewKeySource.
const (
	KeySourceDevice     = "device"
	KeySourcePassphrase = "passphrase"
)

// KeySource supplies the single key used by a Guard.
type KeySource interface {
	Key() ([]byte, error)
}

// NewKeySource returns the key source named by kind. The passphrase is only
// used by the passphrase source.
func NewKeySource(kind, path string, passphrase []byte) (KeySource, error) {
	switch kind {
	case "", KeySourceDevice:
		return &DeviceKeySource{Path: path}, nil
	case KeySourcePassphrase:
		return &PassphraseKeySource{Path: path, Passphrase: passphrase}, nil
	default:
		return nil, fmt.Errorf("%w: unknown key source %q", common.ErrCrypto, kind)
	}
}

// DeviceKeySource keeps a random key in a file readable only by the owner.
// The key is created on first use and never leaves the device.
type DeviceKeySource struct {
	Path string
}

func (s *DeviceKeySource) Key() ([]byte, error) {
	key, err := os.ReadFile(s.Path)
	if err == nil {
		if len(key) != KeySize {
			return nil, fmt.Errorf("%w: key file %s is corrupt", common.ErrCrypto, s.Path)
		}
		return key, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: read key: %w", common.ErrCrypto, err)
	}

	key = make([]byte, KeySize)
	if _, err := io.ReadFull(randReader, key); err != nil {
		return nil, fmt.Errorf("%w: generate key: %w", common.ErrCrypto, err)
	}
	if err := writeKeyFile(s.Path, key); err != nil {
		// Another process may have won the race; use its key.
		if errors.Is(err, fs.ErrExist) {
			return s.Key()
		}
		return nil, err
	}
	return key, nil
}

// PassphraseKeySource derives the key from a passphrase with Argon2id. The
// file at Path stores the salt and a verifier so that a wrong passphrase is
// rejected instead of silently producing undecryptable data.
type PassphraseKeySource struct {
	Path       string
	Passphrase []byte
}

type passphraseFile struct {
	Salt     []byte `json:"salt"`
	Verifier []byte `json:"verifier"`
}

func (s *PassphraseKeySource) Key() ([]byte, error) {
	if len(s.Passphrase) == 0 {
		return nil, fmt.Errorf("%w: empty passphrase", common.ErrCrypto)
	}

	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		salt := common.GenerateRandByteArray(32)
		key := DeriveMasterKey(s.Passphrase, salt)
		b, err := json.Marshal(passphraseFile{Salt: salt, Verifier: MakeVerifier(key)})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrCrypto, err)
		}
		if err := writeKeyFile(s.Path, b); err != nil {
			return nil, err
		}
		return key, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read key file: %w", common.ErrCrypto, err)
	}

	var pf passphraseFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("%w: key file %s is corrupt: %w", common.ErrCrypto, s.Path, err)
	}

	key := DeriveMasterKey(s.Passphrase, pf.Salt)
	if subtle.ConstantTimeCompare(MakeVerifier(key), pf.Verifier) == 0 {
		common.WipeByteArray(key)
		return nil, fmt.Errorf("%w: wrong passphrase", common.ErrCrypto)
	}
	return key, nil
}

// MakeVerifier returns a SHA-256 digest of the key used to check a passphrase.
func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// DeriveMasterKey stretches a passphrase into a 32-byte key with Argon2id.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, KeySize)
}

func writeKeyFile(path string, data []byte) error {
	if err := filex.EnsureParentDir(path); err != nil {
		return fmt.Errorf("%w: key dir: %w", common.ErrCrypto, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return err
		}
		return fmt.Errorf("%w: create key file: %w", common.ErrCrypto, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("%w: write key file: %w", common.ErrCrypto, err)
	}
	return nil
}
