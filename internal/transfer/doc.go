// Package transfer moves typed values into and out of call-scoped byte views.
// It is the single place where bytes are interpreted as values: every other
// package hands views through untouched and asks a Codec to rebuild the value.
package transfer
