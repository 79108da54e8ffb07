// Package protocol owns the firmware property wire contract.
//
// Ownership boundary:
// - envelope layout and status words
// - tag catalog (codes and payload sizes)
// - envelope encode/decode and response validation
// - error taxonomy shared by the exchange path
package protocol
