package plasma

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/golang/snappy"
	"github.com/google/uuid"
)

const codecVersion = 1

// genomeNamespace scopes fingerprints so they never collide with other UUIDv5 users.
var genomeNamespace = uuid.MustParse("7b0c7a6e-4f43-5d8a-9a55-3c1f1f0d2e61")

type wireGenome struct {
	Version int `json:"v"`
	Genome
}

// Encode returns a compact, URL-safe code for g: base64(snappy(json)).
func Encode(g Genome) (string, error) {
	data, err := json.Marshal(wireGenome{Version: codecVersion, Genome: g})
	if err != nil {
		return "", fmt.Errorf("encode genome: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(snappy.Encode(nil, data)), nil
}

// Decode parses a code produced by Encode and checks the structural invariants.
func Decode(code string) (Genome, error) {
	raw, err := base64.RawURLEncoding.DecodeString(code)
	if err != nil {
		return Genome{}, fmt.Errorf("%w: %v", ErrMalformedCode, err)
	}
	data, err := snappy.Decode(nil, raw)
	if err != nil {
		return Genome{}, fmt.Errorf("%w: %v", ErrMalformedCode, err)
	}
	var w wireGenome
	if err := json.Unmarshal(data, &w); err != nil {
		return Genome{}, fmt.Errorf("%w: %v", ErrMalformedCode, err)
	}
	if w.Version != codecVersion {
		return Genome{}, fmt.Errorf("%w: unsupported version %d", ErrMalformedCode, w.Version)
	}
	if err := w.Genome.Validate(Limits{}); err != nil {
		return Genome{}, err
	}
	return w.Genome, nil
}

// Fingerprint is a content-derived identifier: equal genomes share a fingerprint.
func Fingerprint(g Genome) uuid.UUID {
	code, err := Encode(g)
	if err != nil {
		return uuid.Nil
	}
	return uuid.NewSHA1(genomeNamespace, []byte(code))
}
