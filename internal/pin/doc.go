// Package pin implements the six-digit secondary credential: validation,
// digest encoding, and the set/verify operations with failed-attempt
// lockout.
package pin
