package fs

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/knot/internal/core/domain"
	"go.trai.ch/knot/internal/core/ports"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes unit fingerprints.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Fingerprint hashes the unit's name and source. References are derived from the
// source, so they need no section of their own.
func (h *Hasher) Fingerprint(unit *domain.Unit) string {
	hasher := xxhash.New()
	_, _ = hasher.WriteString(unit.Name.String())
	_, _ = hasher.Write([]byte{0}) // Separator
	_, _ = hasher.WriteString(unit.Source)
	return fmt.Sprintf("%016x", hasher.Sum64())
}
