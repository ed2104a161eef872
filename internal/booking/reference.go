package booking

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"time"
)

const (
	referencePrefix = "BMC"
	tokenLength     = 5
	tokenCharset    = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NewReference generates a human-legible booking reference of the form
// BMC-<base36 timestamp>-<random token>. Uniqueness is ultimately enforced by
// the storage layer; the timestamp plus random token make collisions rare.
func NewReference() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return fmt.Sprintf("%s-%s-%s", referencePrefix, ts, randomToken(tokenLength))
}

func randomToken(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	for i, b := range buf {
		buf[i] = tokenCharset[int(b)%len(tokenCharset)]
	}
	return string(buf)
}
