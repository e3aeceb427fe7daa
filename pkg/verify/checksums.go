package verify

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/adler32"
	"strings"

	exporterrors "github.com/provide-io/imgexport/pkg/export/errors"
)

// ChecksumAlgorithm represents supported checksum algorithms
type ChecksumAlgorithm int

const (
	ChecksumSHA256 ChecksumAlgorithm = iota
	ChecksumSHA512
	ChecksumAdler32
)

func (c ChecksumAlgorithm) String() string {
	switch c {
	case ChecksumSHA256:
		return "sha256"
	case ChecksumSHA512:
		return "sha512"
	case ChecksumAdler32:
		return "adler32"
	default:
		return "unknown"
	}
}

func (c ChecksumAlgorithm) newHash() hash.Hash {
	switch c {
	case ChecksumSHA512:
		return sha512.New()
	case ChecksumAdler32:
		return adler32.New()
	default:
		return sha256.New()
	}
}

// Checksum returns the prefixed checksum of data, e.g. "sha256:c0ffee...".
func Checksum(algo ChecksumAlgorithm, data []byte) string {
	h := algo.newHash()
	h.Write(data)
	return algo.String() + ":" + hex.EncodeToString(h.Sum(nil))
}

// ParseChecksum splits a prefixed checksum. Unprefixed values are taken as
// sha256.
func ParseChecksum(checksum string) (ChecksumAlgorithm, string, error) {
	name, value, ok := strings.Cut(checksum, ":")
	if !ok {
		return ChecksumSHA256, checksum, nil
	}
	switch name {
	case "sha256":
		return ChecksumSHA256, value, nil
	case "sha512":
		return ChecksumSHA512, value, nil
	case "adler32":
		return ChecksumAdler32, value, nil
	default:
		return ChecksumSHA256, "", fmt.Errorf("unknown checksum algorithm: %s", name)
	}
}

// VerifyChecksum checks data against a prefixed or bare checksum.
func VerifyChecksum(data []byte, checksum string) error {
	algo, want, err := ParseChecksum(checksum)
	if err != nil {
		return err
	}
	got := Checksum(algo, data)
	if !strings.EqualFold(got, algo.String()+":"+want) {
		return fmt.Errorf("%w: expected %s:%s, got %s", exporterrors.ErrIntegrityCheckFailed, algo, want, got)
	}
	return nil
}
