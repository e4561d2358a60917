package traceback

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// FingerprintLength is the number of hex characters kept from the digest.
const FingerprintLength = 10

// Fingerprint identifies an error instance by its selected frames and its
// exception lines. Frames are hashed in the order given, which callers keep
// chronological, as "location:line:routine", followed by each exception line.
func Fingerprint(frames []Frame, exceptionLines []string) string {
	h := sha256.New()
	for _, f := range frames {
		fmt.Fprintf(h, "%s:%d:%s", f.Location, f.Line, f.Routine)
	}
	for _, line := range exceptionLines {
		_, _ = io.WriteString(h, line)
	}
	return hex.EncodeToString(h.Sum(nil))[:FingerprintLength]
}
