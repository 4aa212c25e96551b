// Package fingerprint computes the deterministic staleness hash of a target.
package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sort"

	"github.com/aretw0/cairn/pkg/domain"
)

// Compute hashes a target's command definition together with the
// fingerprints of its upstream results.
//
// Determinism rules:
//   - Upstream fingerprints are treated as a set and sorted before hashing,
//     so the combination order never changes the output.
//   - All fields are length-prefixed to avoid concatenation ambiguity.
func Compute(definition string, upstream []domain.Fingerprint) domain.Fingerprint {
	h := sha256.New()

	writeField := func(data []byte) {
		var length [8]byte
		binary.BigEndian.PutUint64(length[:], uint64(len(data)))
		h.Write(length[:])
		h.Write(data)
	}

	writeField([]byte(definition))

	sorted := make([]string, len(upstream))
	for i, fp := range upstream {
		sorted[i] = string(fp)
	}
	sort.Strings(sorted)

	var count [8]byte
	binary.BigEndian.PutUint64(count[:], uint64(len(sorted)))
	h.Write(count[:])
	for _, fp := range sorted {
		writeField([]byte(fp))
	}

	return domain.Fingerprint(hex.EncodeToString(h.Sum(nil)))
}
