// Package main is the entry point for the category cache reconciler. It
// consumes cache fallback events and repairs the cache from the store.
package main

func main() {
	Execute()
}
