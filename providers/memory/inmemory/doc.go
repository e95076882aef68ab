// Package inmemory provides [ArrayMemory], a concurrency-safe in-process
// implementation of memory.Provider. History does not survive a restart.
package inmemory
