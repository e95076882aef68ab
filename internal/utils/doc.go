// Package utils provides shared low-level helpers used throughout the jarvis
// internals: the synchronous JSON POST helper used by completion providers,
// the backoff policy shared by the retrying HTTP layers, and small pointer
// and string utilities.
//
// Key entry points: [DoPostSync] for synchronous JSON round-trips,
// [Backoff] for retry spacing, [Ptr] for converting values to pointers.
package utils
