package command

import (
	"strconv"
	"strings"
)

// Dispatch maps a decoded Frame to one of this package's typed command
// structs. Unrecognized names become UnknownCommand.
func Dispatch(f Frame) Decoded {
	name := strings.ToUpper(f.Name)
	args := f.Args

	switch name {
	case "SELECT":
		return SelectCommand{Name: name, DB: atoiArg(args, 0)}
	case "PING":
		return PingCommand{Name: name}
	case "SET", "SETEX", "PSETEX", "SETNX", "MSET", "MSETNX", "APPEND", "SETRANGE":
		return StringWriteCommand{Name: name, Key: argAt(args, 0), Value: argAt(args, 1), Args: args}
	case "DEL", "UNLINK":
		return DeleteCommand{Name: name, Keys: args}
	case "EXPIRE", "EXPIREAT", "PEXPIRE", "PEXPIREAT", "PERSIST":
		return ExpireCommand{Name: name, Key: argAt(args, 0), Arg: argAt(args, 1)}
	case "INCR", "DECR", "INCRBY", "DECRBY", "INCRBYFLOAT":
		return CounterCommand{Name: name, Key: argAt(args, 0), Delta: argAt(args, 1)}
	case "RENAME", "RENAMENX":
		return RenameCommand{Name: name, Src: argAt(args, 0), Dst: argAt(args, 1)}
	case "RPUSH", "LPUSH", "RPUSHX", "LPUSHX", "LINSERT", "LSET", "LPOP", "RPOP",
		"LREM", "LTRIM", "RPOPLPUSH", "BRPOPLPUSH", "LMOVE":
		return ListCommand{Name: name, Key: argAt(args, 0), Args: args}
	case "SADD", "SREM", "SMOVE", "SPOP", "SDIFFSTORE", "SINTERSTORE", "SUNIONSTORE":
		return SetCollectionCommand{Name: name, Key: argAt(args, 0), Args: args}
	case "ZADD", "ZREM", "ZINCRBY", "ZPOPMIN", "ZPOPMAX", "ZREMRANGEBYSCORE",
		"ZREMRANGEBYRANK", "ZREMRANGEBYLEX", "ZUNIONSTORE", "ZINTERSTORE":
		return ZSetCommand{Name: name, Key: argAt(args, 0), Args: args}
	case "HSET", "HMSET", "HSETNX", "HDEL", "HINCRBY", "HINCRBYFLOAT":
		return HashCommand{Name: name, Key: argAt(args, 0), Args: args}
	case "XADD", "XDEL", "XTRIM", "XSETID", "XCLAIM", "XGROUP":
		return StreamCommand{Name: name, Key: argAt(args, 0), Args: args}
	case "GEOADD":
		return GeoAddCommand{Key: argAt(args, 0), Args: args}
	case "PFADD", "PFCOUNT", "PFMERGE":
		return HyperLogLogCommand{Name: name, Keys: args}
	case "PUBLISH":
		return PublishCommand{Channel: argAt(args, 0), Message: argAt(args, 1)}
	case "SCRIPT", "EVAL", "EVALSHA":
		return ScriptCommand{Name: name, Args: args}
	case "MULTI", "EXEC", "DISCARD":
		return TransactionCommand{Name: name}
	case "FLUSHDB", "FLUSHALL":
		return FlushCommand{Name: name, Async: hasArg(args, "ASYNC")}
	case "SWAPDB":
		return SwapDBCommand{Index1: atoiArg(args, 0), Index2: atoiArg(args, 1)}
	case "REPLCONF", "REPLICAONLY":
		return ReplConfCommand{Name: name, Args: args}
	case "DEBUG", "RESTORE":
		return DebugRestoreCommand{Name: name, Key: argAt(args, 0), Args: args}
	case "COPY":
		return CopyCommand{Source: argAt(args, 0), Destination: argAt(args, 1), Args: args}
	case "OBJECT":
		return ObjectCommand{Args: args}
	case "WAIT":
		return WaitCommand{Args: args}
	default:
		return UnknownCommand{Name: name, Args: args}
	}
}

func argAt(args [][]byte, i int) []byte {
	if i < 0 || i >= len(args) {
		return nil
	}
	return args[i]
}

func atoiArg(args [][]byte, i int) int {
	b := argAt(args, i)
	if b == nil {
		return 0
	}
	n, _ := strconv.Atoi(string(b))
	return n
}

func hasArg(args [][]byte, token string) bool {
	for _, a := range args {
		if strings.EqualFold(string(a), token) {
			return true
		}
	}
	return false
}
