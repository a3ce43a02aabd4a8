package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/dgbank/dgbank/internal/domain"
	"github.com/theplant/luhn"
)

var (
	ibanPattern = regexp.MustCompile(`^IT\d{2}X0547281110\d{12}$`)
	cardPattern = regexp.MustCompile(`^\d{4} \d{4} \d{4} \d{4}$`)
)

// seqRand replays a fixed sequence so generation is predictable.
type seqRand struct {
	vals []int
	i    int
}

func (r *seqRand) IntN(n int) int {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v % n
}

func TestIBANFormat(t *testing.T) {
	gen := NewIdentifierGenerator(newStubStore())

	for i := 0; i < 20; i++ {
		iban, err := gen.IBAN(context.Background())
		if err != nil {
			t.Fatalf("IBAN: %v", err)
		}
		if len(iban) != 27 {
			t.Fatalf("IBAN %q has length %d, want 27", iban, len(iban))
		}
		if !strings.HasPrefix(iban, "IT") {
			t.Fatalf("IBAN %q does not start with the country code", iban)
		}
		if !regexp.MustCompile(`^IT\d{2}X\d{5}\d{5}\d{12}$`).MatchString(iban) {
			t.Fatalf("IBAN %q does not match the Italian layout", iban)
		}
	}
}

func TestIBANCollisionRetry(t *testing.T) {
	store := newStubStore()
	gen := NewIdentifierGenerator(store)
	gen.newRand = func() Rand { return &seqRand{vals: []int{7, 5}} }

	taken := "IT07X0547281110000000000005"
	store.addAccount(domain.Account{IBAN: taken, IsActive: true, OwnerID: 1})

	iban, err := gen.IBAN(context.Background())
	if err != nil {
		t.Fatalf("IBAN: %v", err)
	}
	if iban == taken {
		t.Fatalf("generator returned the taken identifier %q", iban)
	}
	if len(iban) != 27 {
		t.Errorf("IBAN %q has length %d, want 27", iban, len(iban))
	}
}

func TestCardNumberFormat(t *testing.T) {
	gen := NewIdentifierGenerator(newStubStore())

	for i := 0; i < 20; i++ {
		number, err := gen.CardNumber(context.Background())
		if err != nil {
			t.Fatalf("CardNumber: %v", err)
		}
		if !cardPattern.MatchString(number) {
			t.Fatalf("card number %q is not four space-separated groups of four digits", number)
		}

		digits, err := strconv.ParseInt(strings.ReplaceAll(number, " ", ""), 10, 64)
		if err != nil {
			t.Fatalf("parsing card number %q: %v", number, err)
		}
		if !luhn.Valid(int(digits)) {
			t.Fatalf("card number %q fails the Luhn check", number)
		}
	}
}

func TestCardNumberCollisionRetry(t *testing.T) {
	store := newStubStore()
	gen := NewIdentifierGenerator(store)

	first, err := gen.CardNumber(context.Background())
	if err != nil {
		t.Fatalf("CardNumber: %v", err)
	}
	if err := store.CreateCard(context.Background(), &domain.Card{Number: first}); err != nil {
		t.Fatalf("CreateCard: %v", err)
	}

	second, err := gen.CardNumber(context.Background())
	if err != nil {
		t.Fatalf("CardNumber: %v", err)
	}
	if second == first {
		t.Fatalf("generator returned the taken card number %q", second)
	}
}

func TestCVVFormat(t *testing.T) {
	gen := NewIdentifierGenerator(newStubStore())

	for i := 0; i < 20; i++ {
		cvv := gen.CVV()
		if len(cvv) != 3 {
			t.Fatalf("CVV %q has length %d, want 3", cvv, len(cvv))
		}
		if _, err := strconv.Atoi(cvv); err != nil {
			t.Fatalf("CVV %q is not numeric", cvv)
		}
	}
}

func TestIBANPatternMatchesValidator(t *testing.T) {
	gen := NewIdentifierGenerator(newStubStore())

	iban, err := gen.IBAN(context.Background())
	if err != nil {
		t.Fatalf("IBAN: %v", err)
	}
	if !ibanPattern.MatchString(strings.ReplaceAll(iban, " ", "")) {
		t.Errorf("generated IBAN %q does not carry the issuing bank and branch codes", iban)
	}
}
