package rdb

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"

	"redisrepl/internal/byteio"
)

const magic = "REDIS"

// Decoder walks a byte stream positioned at the start of the RDB magic and
// yields one Record per opcode-dispatched entry, terminating the sequence
// with io.EOF after the EOF opcode. The opcode switch in Next is grounded
// on the teacher's ParseNext structure (read-opcode, switch, continue
// unless it's a value type), generalized from Dragonfly's opcode subset to
// the full standard Redis table spec.md §4.4 names.
type Decoder struct {
	r  *byteio.Reader
	db int

	pendingExpiry ExpiryHint
	pendingIdle   *int64
	pendingFreq   *uint8

	checksummed bool
	done        bool
}

// NewDecoder wraps r. r must be positioned at the snapshot's first byte.
func NewDecoder(r *byteio.Reader) *Decoder {
	return &Decoder{r: r}
}

// ReadHeader consumes the "REDIS" magic and 4-digit version, then begins
// checksum capture over every subsequent byte — spec.md §4.4 steps 1-2.
func (d *Decoder) ReadHeader() (version int, err error) {
	buf, err := d.r.ReadExact(9)
	if err != nil {
		return 0, fmt.Errorf("rdb: read header: %w", err)
	}
	if string(buf[:5]) != magic {
		return 0, fmt.Errorf("rdb: bad magic %q", buf[:5])
	}
	version, err = strconv.Atoi(string(buf[5:9]))
	if err != nil {
		return 0, fmt.Errorf("rdb: bad version digits %q: %w", buf[5:9], err)
	}

	d.r.BeginChecksum()
	d.checksummed = true
	return version, nil
}

// Next returns the next decoded Record, or io.EOF once the EOF opcode has
// been consumed and verified.
func (d *Decoder) Next() (Record, error) {
	if d.done {
		return nil, io.EOF
	}

	for {
		op, err := d.r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("rdb: read opcode: %w", err)
		}

		switch int(op) {
		case opAux:
			key, err := DecodeString(d.r)
			if err != nil {
				return nil, fmt.Errorf("rdb: aux key: %w", err)
			}
			value, err := DecodeString(d.r)
			if err != nil {
				return nil, fmt.Errorf("rdb: aux value: %w", err)
			}
			return AuxRecord{Key: key, Value: value}, nil

		case opResizeDB:
			dbSize, _, err := DecodeLength(d.r)
			if err != nil {
				return nil, fmt.Errorf("rdb: resize-db main hint: %w", err)
			}
			expiresSize, _, err := DecodeLength(d.r)
			if err != nil {
				return nil, fmt.Errorf("rdb: resize-db expires hint: %w", err)
			}
			return ResizeRecord{DBSize: dbSize, ExpiresSize: expiresSize}, nil

		case opExpireTimeMs:
			buf, err := d.r.ReadExact(8)
			if err != nil {
				return nil, fmt.Errorf("rdb: expire-ms: %w", err)
			}
			d.pendingExpiry = ExpiryHint{Kind: ExpiryMillis, AtMs: int64(binary.LittleEndian.Uint64(buf))}
			continue

		case opExpireTime:
			buf, err := d.r.ReadExact(4)
			if err != nil {
				return nil, fmt.Errorf("rdb: expire-s: %w", err)
			}
			seconds := int64(binary.LittleEndian.Uint32(buf))
			d.pendingExpiry = ExpiryHint{Kind: ExpirySeconds, AtMs: seconds * 1000}
			continue

		case opLFUFreq:
			b, err := d.r.ReadByte()
			if err != nil {
				return nil, fmt.Errorf("rdb: lfu freq: %w", err)
			}
			d.pendingFreq = &b
			continue

		case opIdle:
			idle, _, err := DecodeLength(d.r)
			if err != nil {
				return nil, fmt.Errorf("rdb: idle seconds: %w", err)
			}
			v := int64(idle)
			d.pendingIdle = &v
			continue

		case opSelectDB:
			db, _, err := DecodeLength(d.r)
			if err != nil {
				return nil, fmt.Errorf("rdb: select-db: %w", err)
			}
			d.db = int(db)
			return SelectRecord{DB: d.db}, nil

		case opEOF:
			if err := d.readEOF(); err != nil {
				return nil, err
			}
			d.done = true
			return nil, io.EOF

		default:
			return d.readKeyValue(int(op))
		}
	}
}

func (d *Decoder) readEOF() error {
	crc := d.r.EndChecksum()
	d.checksummed = false

	buf, err := d.r.ReadExact(8)
	if err != nil {
		return fmt.Errorf("rdb: read trailing checksum: %w", err)
	}
	want := binary.LittleEndian.Uint64(buf)
	if want == 0 {
		// Checksum disabled by the snapshot header flag (all-zero trailer).
		return nil
	}
	if want != crc {
		return fmt.Errorf("rdb: checksum mismatch: stream says %x, computed %x", want, crc)
	}
	return nil
}

func (d *Decoder) readKeyValue(typeTag int) (Record, error) {
	key, err := DecodeString(d.r)
	if err != nil {
		return nil, fmt.Errorf("rdb: key (type %d): %w", typeTag, err)
	}

	value, err := d.decodeValue(typeTag)
	if err != nil {
		return nil, fmt.Errorf("rdb: value for key %q (type %d): %w", key, typeTag, err)
	}

	rec := KeyValueRecord{
		DB:     d.db,
		Key:    key,
		Value:  value,
		Expiry: d.pendingExpiry,
		Idle:   d.pendingIdle,
		Freq:   d.pendingFreq,
	}
	d.pendingExpiry = ExpiryHint{}
	d.pendingIdle = nil
	d.pendingFreq = nil
	return rec, nil
}

func (d *Decoder) decodeValue(typeTag int) (Value, error) {
	switch typeTag {
	case TypeString:
		s, err := DecodeString(d.r)
		if err != nil {
			return nil, err
		}
		return StringValue(s), nil

	case TypeList, TypeListZiplist, TypeListQuicklist, TypeListQuicklist2:
		return decodeList(d.r, typeTag)

	case TypeSet, TypeSetIntset, TypeSetListpack:
		return decodeSet(d.r, typeTag)

	case TypeZSet, TypeZSet2, TypeZSetZiplist, TypeZSetListpack:
		return decodeZSet(d.r, typeTag)

	case TypeHash, TypeHashZiplist, TypeHashZipmap, TypeHashListpack,
		TypeHashListpackEx, TypeHashListpackExPreGA:
		return decodeHash(d.r, typeTag)

	case TypeHashMetadata, TypeHashMetadataPreGA:
		return nil, fmt.Errorf("unsupported value type tag %d: hash-field-TTL metadata encoding not decoded", typeTag)

	case TypeStreamListpacks, TypeStreamListpacks2, TypeStreamListpacks3:
		return decodeStream(d.r, typeTag)

	case TypeModule, TypeModule2:
		return decodeModule(d.r, typeTag)

	default:
		return nil, fmt.Errorf("unsupported value type tag %d", typeTag)
	}
}
