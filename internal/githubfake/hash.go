package githubfake

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// BlobSHA is the git object id of content stored as a blob, the same value
// GitHub reports as a file's sha.
func BlobSHA(content []byte) string {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d\x00", len(content))
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}
