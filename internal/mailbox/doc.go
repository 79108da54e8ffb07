// Package mailbox performs firmware property exchanges through the vcio
// character device.
//
// Ownership boundary:
// - device handle lifetime (open once, close exactly once)
// - the blocking property ioctl
// - Perform: encode, exchange, decode
//
// A Device has no internal locking and the protocol has no request ids.
// Callers that share one Device across goroutines must serialize Perform.
package mailbox
