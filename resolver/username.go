package resolver

import (
	"regexp"

	"github.com/pilacorp/go-ssi-sdk/errcode"
)

// MinUsernameLength is the shortest name a user can register.
const MinUsernameLength = 5

var (
	usernamePattern = regexp.MustCompile(`^[\x{3000}\x{3400}-\x{4DBF}\x{4E00}-\x{9FFF}\w]+$`)

	// reservedUsernames are short names owned by the protocol.
	reservedUsernames = map[string]bool{
		"init":  true,
		"tyron": true,
		"wfp":   true,
	}
)

// ValidateUsername accepts word characters and CJK ideographs, at least
// MinUsernameLength of them, or one of the reserved protocol names.
func ValidateUsername(username string) error {
	if reservedUsernames[username] {
		return nil
	}
	if len([]rune(username)) < MinUsernameLength || !usernamePattern.MatchString(username) {
		return errcode.Newf(errcode.InvalidUsername, "invalid username %q", username)
	}
	return nil
}
