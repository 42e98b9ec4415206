package utils

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// NewUserID returns a random user id.
func NewUserID() string {
	return uuid.New().String()
}

// NewOrderID returns a time-sortable order id such as order_2Nx...
func NewOrderID() string {
	return "order_" + ksuid.New().String()
}

func NewPaymentMethodID() string {
	return "pmr_" + ksuid.New().String()
}

// GenerateNumericCode returns n random decimal digits.
func GenerateNumericCode(n int) (string, error) {
	const digits = "0123456789"
	buf := make([]byte, n)
	for i := range buf {
		d, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		buf[i] = digits[d.Int64()]
	}
	return string(buf), nil
}
