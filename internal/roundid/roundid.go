// Package roundid generates sortable identifiers for blackjack rounds.
//
// IDs are UUIDv7 values written as 26 lowercase Crockford base32 characters,
// so they sort by creation time.
package roundid

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/coder/quartz"
)

// Length is the number of characters in a round ID.
const Length = 26

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// RandSource supplies random bytes for the non-time part of the ID.
type RandSource interface {
	IntN(n int) int
}

// Generator creates round IDs from a clock and a random source.
type Generator struct {
	clock quartz.Clock
	rand  RandSource
}

// NewGenerator creates a generator. A nil clock uses real time and a nil
// RandSource uses crypto/rand.
func NewGenerator(clock quartz.Clock, randSource RandSource) *Generator {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Generator{clock: clock, rand: randSource}
}

var defaultGenerator = NewGenerator(nil, nil)

// Generate creates a round ID using real time and crypto/rand.
func Generate() string {
	return defaultGenerator.Generate()
}

// Generate creates a new round ID.
func (g *Generator) Generate() string {
	return encode(g.uuidV7())
}

func (g *Generator) uuidV7() [16]byte {
	var id [16]byte

	// 48-bit big-endian millisecond timestamp
	ms := g.clock.Now().UnixMilli()
	for i := 0; i < 6; i++ {
		id[i] = byte(ms >> (40 - 8*i))
	}

	if g.rand != nil {
		for i := 6; i < 16; i++ {
			id[i] = byte(g.rand.IntN(256))
		}
	} else if _, err := rand.Read(id[6:]); err != nil {
		panic("roundid: reading random bytes: " + err.Error())
	}

	id[6] = (id[6] & 0x0f) | 0x70 // version 7
	id[8] = (id[8] & 0x3f) | 0x80 // RFC 4122 variant
	return id
}

// encode writes the 128 bits as 26 base32 digits, most significant first.
// The leading digit carries only the top 3 bits, which keeps it in 0-7.
func encode(id [16]byte) string {
	var out [Length]byte
	var acc uint32
	bits := 2 // pad to 130 bits at the front
	pos := 0
	for _, b := range id {
		acc = acc<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out[pos] = alphabet[(acc>>bits)&0x1f]
			pos++
		}
	}
	return string(out[:])
}

// Validate checks that id has the round ID shape.
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("round ID must be exactly %d characters, got %d", Length, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("round ID first character must be 0-7, got %c", id[0])
	}
	for i, c := range id {
		if !strings.ContainsRune(alphabet, c) {
			return fmt.Errorf("invalid character %c at position %d", c, i)
		}
	}
	return nil
}
