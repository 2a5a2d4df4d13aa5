// Package fingerprint computes deterministic cache keys for a hierarchy
// level's parent node (spec.md section 4.7, "Tier 1 keyed by a
// deterministic fingerprint of the parent node (key + parentKeys)").
// Grounded on internal/verifier/verifier.go's crypto/sha256 + hex row
// hashing, reused here to hash a node identity instead of a row payload.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
)

// Parent returns a stable hex digest identifying a hierarchy level's
// parent: the root level (parent == nil) fingerprints to a fixed
// sentinel, every other parent fingerprints its own key plus every
// ancestor key in ParentKeys, so two structurally distinct paths to an
// otherwise-equal node never collide.
func Parent(parent *hxtypes.HierarchyNode) string {
	h := sha256.New()
	if parent == nil {
		h.Write([]byte("root"))
		return hex.EncodeToString(h.Sum(nil))
	}
	for _, pk := range parent.ParentKeys {
		h.Write([]byte(pk.Fingerprint()))
		h.Write([]byte{0})
	}
	h.Write([]byte(parent.Key.Fingerprint()))
	return hex.EncodeToString(h.Sum(nil))
}

// Variation returns the tier-2 key for one parent fingerprint's
// (instanceFilter, sizeLimit) variation (spec.md section 4.7). filterJSON
// is the caller's serialized GenericInstanceFilter, or "" when no filter
// is active; sizeLimit <= 0 denotes "unbounded".
func Variation(filterJSON string, sizeLimit int) string {
	h := sha256.New()
	h.Write([]byte(filterJSON))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(sizeLimit)))
	return hex.EncodeToString(h.Sum(nil))
}
