package util

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const orderCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateOrderCode builds the externally shared order code. The random
// suffix alone does not guarantee uniqueness; callers must enforce it with a
// database constraint and regenerate on conflict.
func GenerateOrderCode(orderID int64, now time.Time) string {
	suffix := make([]byte, 4)
	max := big.NewInt(int64(len(orderCodeAlphabet)))

	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			suffix[i] = orderCodeAlphabet[0]
			continue
		}
		suffix[i] = orderCodeAlphabet[n.Int64()]
	}

	return fmt.Sprintf("ORD-%d-%s-%s", orderID, now.UTC().Format("20060102150405"), string(suffix))
}
