// Package session binds to a remote circular-buffer entity and drives the
// per-cycle retrieval pipeline: snapshot the write state, fetch the wrapped
// segments of the three parallel sub-buffers, unpack the sample words,
// reconstruct trigger-relative timestamps, and crop to the configured time
// window.
//
// A BufferSession is created once per entity with Bind while the device is
// in an active mode, and owns its configuration exclusively. Sessions are
// synchronous and single-threaded; independent sessions may be driven
// concurrently by the caller since no state is shared between them.
package session
