package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
)

const (
	randomHashBytes = 16
	txIDLength      = 13
	base36Alphabet  = "0123456789abcdefghijklmnopqrstuvwxyz"
	maxRiskScore    = 10
)

// certificateDomainKey keys the BLAKE3 content hash so certificate hashes
// never coincide with a plain BLAKE3 digest of the same bytes.
var certificateDomainKey = [32]byte{
	'b', 'l', 'o', 'c', 'k', 'v', 'e', 'r', 'i', 'f', 'y', '.', 'c', 'e', 'r', 't',
	'i', 'f', 'i', 'c', 'a', 't', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// HashGenerator produces certificate hashes and the simulated blockchain
// values. The entropy source defaults to crypto/rand.
type HashGenerator struct {
	entropy io.Reader
}

func NewHashGenerator(entropy io.Reader) *HashGenerator {
	if entropy == nil {
		entropy = rand.Reader
	}
	return &HashGenerator{entropy: entropy}
}

// ContentHash returns 0x followed by the hex BLAKE3 keyed hash of data.
func (g *HashGenerator) ContentHash(data []byte) string {
	hasher, err := blake3.NewKeyed(certificateDomainKey[:])
	if err != nil {
		panic("service: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	_, _ = hasher.Write(data)
	return "0x" + hex.EncodeToString(hasher.Sum(nil))
}

// Random returns 0x followed by 32 random lowercase hex characters.
func (g *HashGenerator) Random() (string, error) {
	b := make([]byte, randomHashBytes)
	if _, err := io.ReadFull(g.entropy, b); err != nil {
		return "", fmt.Errorf("generate hash: %w", err)
	}
	return "0x" + hex.EncodeToString(b), nil
}

// TxID returns a fabricated transaction id in the format 0xbc<13 base36>.
func (g *HashGenerator) TxID() (string, error) {
	out := make([]byte, txIDLength)
	for i := range out {
		n, err := g.uniform(len(base36Alphabet))
		if err != nil {
			return "", fmt.Errorf("generate tx id: %w", err)
		}
		out[i] = base36Alphabet[n]
	}
	return "0xbc" + string(out), nil
}

// RiskScore returns a fabricated risk score in [1, 10].
func (g *HashGenerator) RiskScore() (int, error) {
	n, err := g.uniform(maxRiskScore)
	if err != nil {
		return 0, fmt.Errorf("generate risk score: %w", err)
	}
	return n + 1, nil
}

// uniform returns an unbiased value in [0, n) for n <= 256 using rejection
// sampling over single bytes.
func (g *HashGenerator) uniform(n int) (int, error) {
	limit := 256 - 256%n
	var b [1]byte
	for {
		if _, err := io.ReadFull(g.entropy, b[:]); err != nil {
			return 0, err
		}
		if int(b[0]) < limit {
			return int(b[0]) % n, nil
		}
	}
}
