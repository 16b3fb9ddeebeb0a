package testutil

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// GenerateRandomData generates random bytes of the specified size.
func GenerateRandomData(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(rand.Intn(256))
	}
	return data
}

// GenerateKeys returns n keys of the form "<prefix>obj-00000", sorted.
func GenerateKeys(prefix string, n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("%sobj-%05d", prefix, i)
	}
	return keys
}

// SeedKeys stores one small object per key in bucket and returns the keys.
// Each object's body is its own key.
func (m *MemoryS3) SeedKeys(bucket string, keys ...string) []string {
	for _, key := range keys {
		m.Seed(bucket, key, []byte(key))
	}
	return keys
}

// GenerateTestBucketName generates a valid, unique test bucket name.
func GenerateTestBucketName(prefix string) string {
	if prefix == "" {
		prefix = "s3batch-test"
	}
	name := fmt.Sprintf("%s-%d-%d", strings.ToLower(prefix), time.Now().UnixNano()%1_000_000_000, rand.Intn(10000))
	if len(name) > 63 {
		name = name[:63]
	}
	return strings.TrimRight(name, "-")
}
