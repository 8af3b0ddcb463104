package remote

import (
	"math/rand"
	"sync"
	"time"
)

// pushChars is the RTDB push-key alphabet, ordered so that keys sort
// lexicographically by generation time.
const pushChars = "-0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz"

var pushMu struct {
	sync.Mutex
	lastMillis int64
	lastRand   [12]int
}

// NewPushID generates a 20-character child key: 8 characters of epoch
// millis followed by 12 random characters. Keys generated within the
// same millisecond increment the random suffix, so insertion order is
// preserved even under bursts.
func NewPushID() string {
	pushMu.Lock()
	defer pushMu.Unlock()

	now := time.Now().UnixMilli()
	dup := now == pushMu.lastMillis
	pushMu.lastMillis = now

	var buf [20]byte
	for i := 7; i >= 0; i-- {
		buf[i] = pushChars[now%64]
		now /= 64
	}

	if dup {
		// Same millisecond as the previous key: bump the suffix.
		for i := 11; i >= 0; i-- {
			pushMu.lastRand[i]++
			if pushMu.lastRand[i] < 64 {
				break
			}
			pushMu.lastRand[i] = 0
		}
	} else {
		for i := range pushMu.lastRand {
			pushMu.lastRand[i] = rand.Intn(64)
		}
	}

	for i, r := range pushMu.lastRand {
		buf[8+i] = pushChars[r]
	}

	return string(buf[:])
}
