package crypto

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/AlexZinkM/safe-backend/internal/model"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/scrypt"
)

// ErrInvalidPassword is returned when the keystore cannot be opened with
// the given password.
var ErrInvalidPassword = errors.New("invalid password")

func scryptKey(password, salt []byte) ([]byte, error) {
	key, err := scrypt.Key(password, salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

func readCWTFile(filePath string) (*model.CWTFile, error) {
	fileData, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("file does not exist")
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(fileData) == 0 {
		return nil, errors.New("file is empty")
	}

	fileData = bytes.TrimPrefix(fileData, utf8BOM)

	var cwtFile model.CWTFile
	if err := json.Unmarshal(fileData, &cwtFile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cwt file: %w", err)
	}
	if !strings.EqualFold(cwtFile.Network, NetworkEthereum) {
		return nil, fmt.Errorf("unsupported keystore network %q", cwtFile.Network)
	}
	return &cwtFile, nil
}

// DecryptKey reads and decrypts a .cwt keystore.
// password must be []byte (caller should zero it after use).
func DecryptKey(filePath string, password []byte) (*ecdsa.PrivateKey, error) {
	cwtFile, err := readCWTFile(filePath)
	if err != nil {
		return nil, err
	}

	salt, err := base64.StdEncoding.DecodeString(cwtFile.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(cwtFile.Nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to decode nonce: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(cwtFile.CipherText)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	aesGCM, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aesGCM.NonceSize() {
		return nil, fmt.Errorf("invalid nonce length %d", len(nonce))
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidPassword
	}
	defer clear(plaintext)

	var keyData model.WalletData
	if err := json.Unmarshal(plaintext, &keyData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal key data: %w", err)
	}
	defer clear(keyData.PrivateKey)

	key, err := ethcrypto.ToECDSA(keyData.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	if addr := ethcrypto.PubkeyToAddress(key.PublicKey); !strings.EqualFold(addr.Hex(), cwtFile.Address) {
		return nil, fmt.Errorf("keystore address %s does not match key address %s", cwtFile.Address, addr.Hex())
	}
	return key, nil
}

// ReadKeyAddress reads only the signer address from a .cwt file (without decryption).
func ReadKeyAddress(filePath string) (common.Address, error) {
	cwtFile, err := readCWTFile(filePath)
	if err != nil {
		return common.Address{}, err
	}
	if !common.IsHexAddress(cwtFile.Address) {
		return common.Address{}, fmt.Errorf("invalid keystore address %q", cwtFile.Address)
	}
	return common.HexToAddress(cwtFile.Address), nil
}
