package hashing

import (
	"crypto/md5"
	"encoding/hex"
)

// MD5Hex returns the hex-encoded MD5 digest of b. Releases carry this
// digest for client-side integrity display, not for security.
func MD5Hex(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}
