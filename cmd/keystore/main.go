// Command keystore writes the backend signing key to an encrypted .cwt file.
//
// Usage:
//
//	go run ./cmd/keystore -out backend.cwt            # import a hex key from the terminal
//	go run ./cmd/keystore -out backend.cwt -generate  # create a new key
//	go run ./cmd/keystore -in backend.cwt             # print the signer address
package main

import (
	"crypto/ecdsa"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/AlexZinkM/safe-backend/internal/config"
	"github.com/AlexZinkM/safe-backend/internal/crypto"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/term"
)

func main() {
	var (
		out      = flag.String("out", "", "path of the .cwt file to create")
		in       = flag.String("in", "", "path of an existing .cwt file to inspect")
		generate = flag.Bool("generate", false, "generate a new key instead of importing one")
	)
	flag.Parse()

	if err := run(*out, *in, *generate); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(out, in string, generate bool) error {
	if in != "" {
		addr, err := crypto.ReadKeyAddress(in)
		if err != nil {
			return err
		}
		fmt.Println(addr.Hex())
		return nil
	}
	if out == "" {
		return errors.New("-out or -in is required")
	}

	key, err := readKey(generate)
	if err != nil {
		return err
	}

	password, err := config.PromptForPassword()
	if err != nil {
		return err
	}
	defer clear(password)

	fmt.Fprint(os.Stderr, "Repeat keystore password: ")
	repeated, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	defer clear(repeated)
	if string(repeated) != string(password) {
		return errors.New("passwords do not match")
	}

	if err := crypto.EncryptKey(out, key, password); err != nil {
		return err
	}
	fmt.Println(ethcrypto.PubkeyToAddress(key.PublicKey).Hex())
	return nil
}

func readKey(generate bool) (*ecdsa.PrivateKey, error) {
	if generate {
		key, err := ethcrypto.GenerateKey()
		if err != nil {
			return nil, fmt.Errorf("failed to generate key: %w", err)
		}
		return key, nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run interactively to enter the private key")
	}
	fmt.Fprint(os.Stderr, "Enter hex private key: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}
	defer clear(raw)

	key, err := ethcrypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(string(raw)), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}
