package erc4337

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer owns the single ECDSA key that controls the smart account.
type Signer struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewSigner parses a hex private key; the 0x prefix is optional.
func NewSigner(privateKeyHex string) (*Signer, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return &Signer{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}, nil
}

// Address is the owner address of the smart account.
func (s *Signer) Address() common.Address {
	return s.address
}

// SignHash personal-signs a 32-byte operation hash and returns a 65-byte signature with v in {27, 28}.
func (s *Signer) SignHash(hash common.Hash) ([]byte, error) {
	signature, err := crypto.Sign(PersonalSignHash(hash.Bytes()).Bytes(), s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign user operation hash: %w", err)
	}
	signature[crypto.RecoveryIDOffset] += 27
	return signature, nil
}

// SignUserOperation hashes op for the given entry point and chain and stores the signature on it.
func (s *Signer) SignUserOperation(op *UserOperation, entryPoint common.Address, chainId *big.Int) (common.Hash, error) {
	hash, err := GetUserOpHash(op, entryPoint, chainId)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to calculate user operation hash: %w", err)
	}
	signature, err := s.SignHash(hash)
	if err != nil {
		return common.Hash{}, err
	}
	op.Signature = signature
	return hash, nil
}

// PersonalSignHash is the EIP-191 "Ethereum Signed Message" digest of data.
func PersonalSignHash(data []byte) common.Hash {
	msg := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(data), data)
	return crypto.Keccak256Hash([]byte(msg))
}

// RecoverSigner returns the address that produced signature over the personal-sign digest of hash.
func RecoverSigner(hash common.Hash, signature []byte) (common.Address, error) {
	if len(signature) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length: %d", len(signature))
	}
	sig := common.CopyBytes(signature)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(PersonalSignHash(hash.Bytes()).Bytes(), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
