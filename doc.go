// Package msgq implements an in-process message queue. Goroutines exchange
// messages through a Queue: producers Put, consumers block in Get until a
// message arrives or their timeout elapses.
//
// Every message carries a Kind chosen by the application and a UID that is
// unique for the lifetime of the process. Messages have a single owner. Put
// takes ownership of the message it is given and the caller's handle becomes
// unusable; Get hands ownership to exactly one consumer.
//
// A timeout is not an error. When Get gives up it returns an ordinary message
// whose Kind is KindTimeout, so consumers can treat it like any other kind.
//
// Request layers a synchronous call on top of Put and Get. The requester
// blocks until some other goroutine answers with RespondTo, passing the UID of
// the request it received. Request has no timeout and cannot be cancelled:
// a request that is never answered blocks forever.
package msgq
