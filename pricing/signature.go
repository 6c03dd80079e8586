package pricing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"pricing-rollup/models"
)

// SignatureLength is the length of an input signature: hex-encoded SHA-256
const SignatureLength = 64

// SignatureInputs are the pricing inputs covered by a snapshot's input signature
type SignatureInputs struct {
	TreeVersionID      string
	ExplicitSelections map[string]any
	Env                map[string]any
}

// ComputeSignature hashes the canonical form of
// {"treeVersionId", "explicitSelections", "env"} and returns lowercase hex.
func ComputeSignature(in SignatureInputs) (string, error) {
	canonical, err := Canonicalize(map[string]any{
		"treeVersionId":      in.TreeVersionID,
		"explicitSelections": in.ExplicitSelections,
		"env":                in.Env,
	})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:]), nil
}

// SnapshotInputs extracts the signed inputs from a snapshot; ok is false when any is absent
func SnapshotInputs(s *models.PricingSnapshot) (SignatureInputs, bool) {
	if !s.HasInputs() {
		return SignatureInputs{}, false
	}
	return SignatureInputs{
		TreeVersionID:      *s.TreeVersionID,
		ExplicitSelections: s.ExplicitSelections,
		Env:                s.Env,
	}, true
}

// SignSnapshot computes and stores the snapshot's input signature
func SignSnapshot(s *models.PricingSnapshot) error {
	in, ok := SnapshotInputs(s)
	if !ok {
		return fmt.Errorf("snapshot is missing treeVersionId, explicitSelections or env")
	}
	sig, err := ComputeSignature(in)
	if err != nil {
		return err
	}
	s.InputSignature = &sig
	return nil
}

// SignaturesEqual compares two hex signatures ignoring case and surrounding space
func SignaturesEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
