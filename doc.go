// Package redisrepl implements a Redis replication client: it speaks the
// PSYNC handshake, decodes the RDB snapshot a master sends, then decodes
// the post-snapshot command stream, delivering every observed mutation to
// a caller-supplied Handler as a typed Event.
//
// The library never applies commands to a store and never opens the
// transport itself — callers dial the connection and hand it to Session.
package redisrepl
