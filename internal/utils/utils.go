package utils

import (
	"math/rand/v2"
	"strings"
)

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// codeAlphabet deliberately drops 0/O/1/I so private codes survive being read
// aloud or typed from a phone screen.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateCode returns a human-enterable session code of the given length.
func GenerateCode(length int) string {
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte(codeAlphabet[rand.IntN(len(codeAlphabet))])
	}
	return b.String()
}

// PickTargetType selects the shared round parameter using the provided
// source, so game logic can stay deterministic under test.
func PickTargetType(rng *rand.Rand) string {
	if rng == nil {
		return TargetTypes[rand.IntN(len(TargetTypes))]
	}
	return TargetTypes[rng.IntN(len(TargetTypes))]
}
