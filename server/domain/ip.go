package domain

import "regexp"

var dottedQuadPattern = regexp.MustCompile(`^(\d+\.\d+\.\d+)\.\d+$`)

// IPRange returns the /24 wildcard form of a dotted-quad address: the last
// octet replaced by "*". Anything that is not a dotted quad is returned
// unchanged.
func IPRange(ip string) string {
	if m := dottedQuadPattern.FindStringSubmatch(ip); m != nil {
		return m[1] + ".*"
	}
	return ip
}
