package utils

import "github.com/microcosm-cc/bluemonday"

// ugcPolicy allows the usual user-generated-content subset of HTML.
var ugcPolicy = bluemonday.UGCPolicy()

// Sanitize strips unsafe markup from user-supplied text such as chat
// messages, bios, and clan descriptions.
func Sanitize(input string) string {
	return ugcPolicy.Sanitize(input)
}
