// Package command decodes the post-snapshot replication stream: RESP
// multi-bulk command frames, mapped to a fixed taxonomy of typed command
// events. Grounded on the teacher's internal/redisx/client.go readReply
// state machine, adapted from "parse one reply for a client call" to
// "parse and byte-count one inbound command frame".
package command

// Frame is one decoded wire frame: the command name, its raw arguments,
// and the exact number of stream bytes it consumed. ByteLen feeds the
// replication offset counter directly.
type Frame struct {
	Name    string
	Args    [][]byte
	ByteLen int64
}

// Decoded is implemented by every typed command struct in this package.
// Command returns the verb as it appeared on the wire, upper-cased.
type Decoded interface {
	Command() string
}

type SelectCommand struct {
	Name string
	DB   int
}

func (c SelectCommand) Command() string { return c.Name }

type PingCommand struct {
	Name string
}

func (c PingCommand) Command() string { return c.Name }

// StringWriteCommand covers SET and its close relatives: SETEX, PSETEX,
// SETNX, MSET, MSETNX, APPEND, SETRANGE. Key/Value hold the first two
// arguments for the single-key forms; Args always holds the full
// argument list so MSET/MSETNX's repeated key/value pairs and SET's
// option flags (EX/PX/NX/XX/GET/KEEPTTL) remain reachable.
type StringWriteCommand struct {
	Name  string
	Key   []byte
	Value []byte
	Args  [][]byte
}

func (c StringWriteCommand) Command() string { return c.Name }

// DeleteCommand covers DEL and UNLINK.
type DeleteCommand struct {
	Name string
	Keys [][]byte
}

func (c DeleteCommand) Command() string { return c.Name }

// ExpireCommand covers EXPIRE, EXPIREAT, PEXPIRE, PEXPIREAT, PERSIST.
// Arg holds the raw second/millisecond/timestamp argument; it is empty
// for PERSIST.
type ExpireCommand struct {
	Name string
	Key  []byte
	Arg  []byte
}

func (c ExpireCommand) Command() string { return c.Name }

// CounterCommand covers INCR, DECR, INCRBY, DECRBY, INCRBYFLOAT. Delta is
// the raw numeric argument; empty for INCR/DECR.
type CounterCommand struct {
	Name  string
	Key   []byte
	Delta []byte
}

func (c CounterCommand) Command() string { return c.Name }

// RenameCommand covers RENAME and RENAMENX.
type RenameCommand struct {
	Name string
	Src  []byte
	Dst  []byte
}

func (c RenameCommand) Command() string { return c.Name }

// ListCommand covers the RPUSH/LPUSH/RPUSHX/LPUSHX/LINSERT/LSET/LPOP/
// RPOP/LREM/LTRIM/RPOPLPUSH/BRPOPLPUSH/LMOVE family.
type ListCommand struct {
	Name string
	Key  []byte
	Args [][]byte
}

func (c ListCommand) Command() string { return c.Name }

// SetCollectionCommand covers SADD/SREM/SMOVE/SPOP/SDIFFSTORE/
// SINTERSTORE/SUNIONSTORE.
type SetCollectionCommand struct {
	Name string
	Key  []byte
	Args [][]byte
}

func (c SetCollectionCommand) Command() string { return c.Name }

// ZSetCommand covers ZADD/ZREM/ZINCRBY/ZPOPMIN/ZPOPMAX/ZREMRANGEBYSCORE/
// ZREMRANGEBYRANK/ZREMRANGEBYLEX/ZUNIONSTORE/ZINTERSTORE.
type ZSetCommand struct {
	Name string
	Key  []byte
	Args [][]byte
}

func (c ZSetCommand) Command() string { return c.Name }

// HashCommand covers HSET/HMSET/HSETNX/HDEL/HINCRBY/HINCRBYFLOAT.
type HashCommand struct {
	Name string
	Key  []byte
	Args [][]byte
}

func (c HashCommand) Command() string { return c.Name }

// StreamCommand covers XADD/XDEL/XTRIM/XSETID/XCLAIM/XGROUP.
type StreamCommand struct {
	Name string
	Key  []byte
	Args [][]byte
}

func (c StreamCommand) Command() string { return c.Name }

type GeoAddCommand struct {
	Key  []byte
	Args [][]byte
}

func (c GeoAddCommand) Command() string { return "GEOADD" }

// HyperLogLogCommand covers PFADD/PFCOUNT/PFMERGE. All three take one or
// more keys; Keys[0] is the command's own key for PFADD, the destination
// for PFMERGE.
type HyperLogLogCommand struct {
	Name string
	Keys [][]byte
}

func (c HyperLogLogCommand) Command() string { return c.Name }

type PublishCommand struct {
	Channel []byte
	Message []byte
}

func (c PublishCommand) Command() string { return "PUBLISH" }

// ScriptCommand covers SCRIPT, EVAL, EVALSHA.
type ScriptCommand struct {
	Name string
	Args [][]byte
}

func (c ScriptCommand) Command() string { return c.Name }

// TransactionCommand covers MULTI, EXEC, DISCARD.
type TransactionCommand struct {
	Name string
}

func (c TransactionCommand) Command() string { return c.Name }

// FlushCommand covers FLUSHDB, FLUSHALL. Async is true when the ASYNC
// argument was present.
type FlushCommand struct {
	Name  string
	Async bool
}

func (c FlushCommand) Command() string { return c.Name }

type SwapDBCommand struct {
	Index1 int
	Index2 int
}

func (c SwapDBCommand) Command() string { return "SWAPDB" }

// ReplConfCommand covers REPLCONF and REPLICAONLY, both ignored on the
// inbound side but still typed so callers can tell "seen and ignored"
// from "truly unknown".
type ReplConfCommand struct {
	Name string
	Args [][]byte
}

func (c ReplConfCommand) Command() string { return c.Name }

// DebugRestoreCommand covers DEBUG and RESTORE.
type DebugRestoreCommand struct {
	Name string
	Key  []byte
	Args [][]byte
}

func (c DebugRestoreCommand) Command() string { return c.Name }

type CopyCommand struct {
	Source      []byte
	Destination []byte
	Args        [][]byte
}

func (c CopyCommand) Command() string { return "COPY" }

// ObjectCommand is ignored on the inbound side.
type ObjectCommand struct {
	Args [][]byte
}

func (c ObjectCommand) Command() string { return "OBJECT" }

// WaitCommand is ignored on the inbound side.
type WaitCommand struct {
	Args [][]byte
}

func (c WaitCommand) Command() string { return "WAIT" }

// UnknownCommand is every frame whose name isn't in the recognized
// taxonomy. The offset still advances by its ByteLen; callers that care
// about completeness can inspect Args.
type UnknownCommand struct {
	Name string
	Args [][]byte
}

func (c UnknownCommand) Command() string { return c.Name }
