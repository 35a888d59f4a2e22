// SPDX-License-Identifier: MIT

// Package config loads, validates and hot-reloads the service
// configuration. Precedence is ENV > file > defaults, the file is parsed
// strictly (unknown keys are rejected), and the merged result is validated
// with the checking package before it is ever handed out.
package config
