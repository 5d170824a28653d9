// Package memory provides in-process implementations of the repository
// ports. They back the "memory" storage and session drivers and the tests;
// every type is safe for concurrent use.
package memory
