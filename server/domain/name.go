package domain

import "regexp"

var (
	channelNamePattern = regexp.MustCompile(`^[\w-]{1,30}$`)
	userNamePattern    = regexp.MustCompile(`^[\w-]{1,20}$`)
)

// IsValidChannelName reports whether name is a legal channel name:
// 1-30 characters from a-z, A-Z, 0-9, -, and _.
func IsValidChannelName(name string) bool {
	return channelNamePattern.MatchString(name)
}

// IsValidUserName reports whether name is a legal user name:
// 1-20 characters from a-z, A-Z, 0-9, -, and _.
func IsValidUserName(name string) bool {
	return userNamePattern.MatchString(name)
}
