// Package util holds a handful of ambient helpers: a package-level
// logging switch (used by registry's Store) and a gensym-style random-id
// helper that tests use for unique fixture names.
package util

import (
	"crypto/rand"
	"encoding/hex"
	"log"
)

// Logging is a clumsy switch that affects what Logf does.
//
// If Logging is true, then Logf calls log.Printf.
var Logging = false

// Logf calls log.Printf if Logging is true.
func Logf(format string, args ...interface{}) {
	if !Logging {
		return
	}
	log.Printf(format, args...)
}

// Gensym returns a random hex string n bytes long, used by tests that need
// unique action or composition names.
func Gensym(n int) string {
	bs := make([]byte, n)
	if _, err := rand.Read(bs); err != nil {
		panic(err)
	}
	return hex.EncodeToString(bs)
}
