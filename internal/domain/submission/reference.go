package submission

import (
	"crypto/rand"
	"fmt"
	"time"
)

const referenceSuffixCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateReference builds a human-readable reference number: "REF", the
// trailing six digits of the millisecond timestamp, and three random
// uppercase alphanumerics. Collisions are possible; callers must verify
// uniqueness against the store and regenerate on conflict.
func GenerateReference(now time.Time) string {
	millis := now.UnixMilli() % 1_000_000
	return fmt.Sprintf("REF%06d%s", millis, randomSuffix(3))
}

func randomSuffix(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure means the process is in a bad state anyway.
		panic(err)
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = referenceSuffixCharset[int(b)%len(referenceSuffixCharset)]
	}
	return string(out)
}
