package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainScope is the domain prefix for scope hashes.
// Version suffix enables future algorithm migration.
const DomainScope = "reorder/scope/v1"

// DomainSpec is the domain prefix for entity spec hashes.
const DomainSpec = "reorder/spec/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ScopeHash identifies one ordering partition of an entity.
// Stable across processes: values are NFC-normalized and canonically encoded.
// The global scope of an entity hashes an empty object.
func ScopeHash(entity string, scope IRObject) (string, error) {
	normalized := make(IRObject, len(scope))
	for k, v := range scope {
		normalized[k] = Normalize(v)
	}
	canonical, err := MarshalCanonical(IRObject{
		"entity": IRString(entity),
		"scope":  normalized,
	})
	if err != nil {
		return "", fmt.Errorf("ScopeHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainScope, canonical), nil
}

// MustScopeHash is like ScopeHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustScopeHash(entity string, scope IRObject) string {
	h, err := ScopeHash(entity, scope)
	if err != nil {
		panic(err)
	}
	return h
}

// SpecHash fingerprints an entity declaration. The store keeps it beside each
// registered table so a changed declaration is detected on open.
func SpecHash(spec EntitySpec) (string, error) {
	fields := make([]any, len(spec.Fields))
	for i, f := range spec.Fields {
		fields[i] = map[string]any{"name": f.Name, "type": string(f.Type)}
	}
	scope := spec.Scope
	if scope == nil {
		scope = []string{}
	}
	canonical, err := MarshalCanonical(map[string]any{
		"name":   spec.Name,
		"table":  spec.Table,
		"fields": fields,
		"scope":  scope,
		"assign": string(spec.AssignModeOrDefault()),
	})
	if err != nil {
		return "", fmt.Errorf("SpecHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSpec, canonical), nil
}
