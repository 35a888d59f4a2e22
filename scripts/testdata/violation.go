// SPDX-License-Identifier: MIT

// Package violation feeds the analyzer gate test. It is never imported.
package violation

// Violate hand-rolls a failure message instead of going through
// checking.CheckError.
func Violate(port int) string {
	if port <= 0 {
		return "port has incorrect value: must be positive"
	}
	return ""
}
