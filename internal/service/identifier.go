package service

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/theplant/luhn"
)

// Bank and branch codes baked into every issued IBAN.
const (
	ibanCountryCode = "IT"
	ibanBankCode    = "X05472"
	ibanBranchCode  = "81110"
)

type identifierStore interface {
	IBANExists(ctx context.Context, iban string) (bool, error)
	CardNumberExists(ctx context.Context, number string) (bool, error)
}

// Rand is the random source consumed by a single generation attempt.
type Rand interface {
	IntN(n int) int
}

// IdentifierGenerator issues unique account IBANs and card numbers,
// retrying against the store on collision. Every call draws a fresh
// random source, so there is no shared generator state and concurrent
// calls are independent.
type IdentifierGenerator struct {
	store   identifierStore
	newRand func() Rand
}

func NewIdentifierGenerator(store identifierStore) *IdentifierGenerator {
	return &IdentifierGenerator{
		store:   store,
		newRand: seededRand,
	}
}

// seededRand builds a PCG source seeded from crypto/rand.
func seededRand() Rand {
	var seed [16]byte
	if _, err := crand.Read(seed[:]); err != nil {
		// crypto/rand.Read does not fail on supported platforms
		panic(fmt.Sprintf("reading random seed: %v", err))
	}
	return rand.New(rand.NewPCG(
		binary.LittleEndian.Uint64(seed[:8]),
		binary.LittleEndian.Uint64(seed[8:]),
	))
}

// IBAN produces a 27-character Italian-format identifier: country code,
// two check digits, bank code, branch code and a 12-digit suffix.
// Uniqueness is re-checked against the store on every attempt since
// identifiers may be allocated concurrently.
func (g *IdentifierGenerator) IBAN(ctx context.Context) (string, error) {
	rnd := g.newRand()
	checkDigits := fmt.Sprintf("%02d", rnd.IntN(100))

	for {
		suffix := fmt.Sprintf("%012d", rnd.IntN(1_000_000_000))
		iban := ibanCountryCode + checkDigits + ibanBankCode + ibanBranchCode + suffix

		exists, err := g.store.IBANExists(ctx, iban)
		if err != nil {
			return "", fmt.Errorf("error checking iban uniqueness: %w", err)
		}
		if !exists {
			return iban, nil
		}
	}
}

// CardNumber produces a Luhn-valid 16-digit number grouped in fours.
func (g *IdentifierGenerator) CardNumber(ctx context.Context) (string, error) {
	rnd := g.newRand()

	for {
		number := formatCardNumber(randomCardDigits(rnd))

		exists, err := g.store.CardNumberExists(ctx, number)
		if err != nil {
			return "", fmt.Errorf("error checking card number uniqueness: %w", err)
		}
		if !exists {
			return number, nil
		}
	}
}

// CVV draws a fresh three-digit code; card verification values are not
// required to be unique.
func (g *IdentifierGenerator) CVV() string {
	return fmt.Sprintf("%03d", g.newRand().IntN(1000))
}

// randomCardDigits draws 15 digits and appends the check digit that
// makes the full number pass the Luhn test.
func randomCardDigits(rnd Rand) int64 {
	base := int64(1 + rnd.IntN(9)) // no leading zero
	for i := 0; i < 14; i++ {
		base = base*10 + int64(rnd.IntN(10))
	}

	for d := int64(0); d < 10; d++ {
		if luhn.Valid(int(base*10 + d)) {
			return base*10 + d
		}
	}

	// one of the ten candidates always validates
	return base * 10
}

func formatCardNumber(digits int64) string {
	s := fmt.Sprintf("%016d", digits)
	var b strings.Builder
	for i := 0; i < len(s); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s[i : i+4])
	}
	return b.String()
}
