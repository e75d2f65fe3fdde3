package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainStudy      = "studyseq/study/v1"
	DomainSequence   = "studyseq/sequence/v1"
	DomainPopulation = "studyseq/population/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StudyHash computes the content hash of a study configuration.
// Two configurations with the same ordering template and settings hash equal
// regardless of key order in the source file.
func StudyHash(cfg *StudyConfig) (string, error) {
	canonical, err := MarshalCanonical(cfg)
	if err != nil {
		return "", fmt.Errorf("StudyHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainStudy, canonical), nil
}

// SequenceHash computes the content hash of one resolved sequence.
func SequenceHash(seq *Sequence) (string, error) {
	canonical, err := MarshalCanonical(seq)
	if err != nil {
		return "", fmt.Errorf("SequenceHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSequence, canonical), nil
}

// PopulationHash computes the content hash of a generated sequence array.
// Order matters: sequence i is handed to the i-th registered participant.
func PopulationHash(seqs []*Sequence) (string, error) {
	arr := make([]any, len(seqs))
	for i, s := range seqs {
		arr[i] = s.canonicalValue()
	}
	canonical, err := MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("PopulationHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainPopulation, canonical), nil
}

// MustSequenceHash is like SequenceHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSequenceHash(seq *Sequence) string {
	h, err := SequenceHash(seq)
	if err != nil {
		panic(err)
	}
	return h
}
