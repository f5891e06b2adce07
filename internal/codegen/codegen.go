// Package codegen produces human-typable voucher codes of the form
// PREFIX-XXXX-XXXX over an alphabet without look-alike characters.
package codegen

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// Alphabet excludes 0, O, I, 1 and L.
const Alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const (
	DefaultPrefix = "INF"
	blockLen      = 4
	// MaxAttempts bounds GenerateUnique. With ~10^12 codes a repeated
	// collision means the existence check is broken.
	MaxAttempts = 10
)

var (
	ErrExhaustedAttempts = errors.New("codegen: no unique code found")
	ErrInvalidPrefix     = errors.New("codegen: prefix must be 3 uppercase letters")

	prefixRe = regexp.MustCompile(`^[A-Z]{3}$`)
)

// ExistsFunc reports whether a code is already taken.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

type Generator struct {
	prefix string
	shape  *regexp.Regexp
}

func New(prefix string) (*Generator, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if !prefixRe.MatchString(prefix) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPrefix, prefix)
	}
	block := fmt.Sprintf("[%s]{%d}", Alphabet, blockLen)
	return &Generator{
		prefix: prefix,
		shape:  regexp.MustCompile("^" + prefix + "-" + block + "-" + block + "$"),
	}, nil
}

func (g *Generator) Prefix() string { return g.prefix }

// Generate draws two independent random blocks.
func (g *Generator) Generate() (string, error) {
	a, err := randomBlock()
	if err != nil {
		return "", err
	}
	b, err := randomBlock()
	if err != nil {
		return "", err
	}
	return g.prefix + "-" + a + "-" + b, nil
}

// IsWellFormed checks the shape of code, ignoring case.
func (g *Generator) IsWellFormed(code string) bool {
	return g.shape.MatchString(Normalize(code))
}

// GenerateUnique retries Generate until exists reports a free code, giving
// up with ErrExhaustedAttempts after MaxAttempts tries. Errors from exists
// are returned as is.
func (g *Generator) GenerateUnique(ctx context.Context, exists ExistsFunc) (string, error) {
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		code, err := g.Generate()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check code existence: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrExhaustedAttempts, MaxAttempts)
}

// Normalize uppercases and trims a user-typed code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func randomBlock() (string, error) {
	var sb strings.Builder
	max := big.NewInt(int64(len(Alphabet)))
	for i := 0; i < blockLen; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		sb.WriteByte(Alphabet[n.Int64()])
	}
	return sb.String(), nil
}
