package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/AlexZinkM/safe-backend/internal/model"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// NetworkEthereum is the network recorded in keystores holding an EVM key.
const NetworkEthereum = "ethereum"

// scrypt parameters for the backend keystore.
// N=2^18 needs ~256MB RAM and 0.5-2s per derivation.
var scryptN = 1 << 18

const (
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltLen      = 32
	nonceLen     = 12
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrFileExists is returned when the keystore file already has content.
var ErrFileExists = errors.New("file is not empty")

// EncryptKey encrypts key and writes it to a .cwt keystore at filePath.
// password must be []byte (caller should zero it after use).
func EncryptKey(filePath string, key *ecdsa.PrivateKey, password []byte) error {
	if filepath.Ext(filePath) != ".cwt" {
		return errors.New("file must have .cwt extension")
	}
	if len(password) == 0 {
		return errors.New("password cannot be empty")
	}

	if fileInfo, err := os.Stat(filePath); err == nil && fileInfo.Size() > 0 {
		return fmt.Errorf("%s: %w", filePath, ErrFileExists)
	}

	address := ethcrypto.PubkeyToAddress(key.PublicKey).Hex()
	qr, err := QRCodePNG(address, QRCodeSize)
	if err != nil {
		return err
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	aesGCM, err := newGCM(password, salt)
	if err != nil {
		return err
	}

	keyBytes := ethcrypto.FromECDSA(key)
	defer clear(keyBytes)

	plaintext, err := json.Marshal(&model.WalletData{
		PrivateKey: keyBytes,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal key data: %w", err)
	}
	defer clear(plaintext)

	ciphertext := aesGCM.Seal(nil, nonce, plaintext, nil)

	fileData, err := json.MarshalIndent(model.CWTFile{
		Network:    NetworkEthereum,
		Address:    address,
		QR:         base64.StdEncoding.EncodeToString(qr),
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		CipherText: base64.StdEncoding.EncodeToString(ciphertext),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cwt file: %w", err)
	}

	// BOM for proper display in Windows editors
	if err := os.WriteFile(filePath, append(append([]byte{}, utf8BOM...), fileData...), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func newGCM(password, salt []byte) (cipher.AEAD, error) {
	key, err := scryptKey(password, salt)
	if err != nil {
		return nil, err
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
