// Package idgen generates the display codes and join tokens used by the
// anonymous chat API.
package idgen

import (
	"fmt"
	"math/rand/v2"
)

const (
	digits       = "0123456789"
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// AnonymousIDLength is the length of a user's display code.
	AnonymousIDLength = 4
	// ChatCodeLength is the length of a chat join token.
	ChatCodeLength = 10
	// AvatarCount is the number of fixed avatar slots (A1..A9).
	AvatarCount = 9
)

// AnonymousID returns a 4-digit display code. Collisions are accepted:
// the code identifies a user visually, not in the database.
func AnonymousID() string {
	return randomString(digits, AnonymousIDLength)
}

// AvatarCode picks one of the fixed avatar slots A1..A9.
func AvatarCode() string {
	return fmt.Sprintf("A%d", rand.IntN(AvatarCount)+1)
}

// ChatCode returns a 10-character alphanumeric join token.
func ChatCode() string {
	return randomString(codeAlphabet, ChatCodeLength)
}

// DisplayName builds the default profile name for a fresh user.
func DisplayName(anonymousID string) string {
	return fmt.Sprintf("Анонимный пользователь #%s", anonymousID)
}

func randomString(alphabet string, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(b)
}
