// Package ringstore provides a fixed-capacity, index-based ring buffer with
// no synchronization of its own.
//
// It is the storage leaf underneath pkg/queue/bounded: the bounded queue
// owns a Store and mutates it only inside its own critical section. Using
// a Store directly from multiple goroutines without external locking is
// a data race.
package ringstore
