package utils

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// GenerateEventID 生成单调递增的事件ID
func GenerateEventID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
