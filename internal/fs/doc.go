// Package fs abstracts the file operations used to persist matrices so that
// failure paths can be exercised in tests.
//
// WriteAtomic is the only way results reach disk: data goes to a temporary
// sibling file which is synced and renamed over the destination, so readers
// never observe a partially written matrix. FaultyFS wraps any FileSystem and
// injects write, sync, close or rename failures by file name pattern.
package fs
