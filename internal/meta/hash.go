package meta

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainInput    = "karst/input/v1"
	DomainTestcase = "karst/testcase/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// InputHash computes the content-addressed identity of a serialized
// input payload. Two testcases carrying byte-identical inputs hash
// the same regardless of filename or metadata, which is what journal
// idempotency keys on.
func InputHash(serialized []byte) string {
	return hashWithDomain(DomainInput, serialized)
}

// TestcaseHash computes a combined identity over an input hash and a
// metadata map. Returns an error if the metadata cannot be canonically
// marshaled.
func TestcaseHash(inputHash string, metadata map[string]any) (string, error) {
	obj := map[string]any{
		"input": inputHash,
	}
	if len(metadata) > 0 {
		obj["metadata"] = metadata
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("TestcaseHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTestcase, canonical), nil
}
