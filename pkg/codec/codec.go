package codec

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/aretw0/quill/pkg/domain"
	"google.golang.org/protobuf/encoding/protowire"
)

// Schema versions.
const (
	V1 = 1
	V2 = 2

	CurrentVersion = V2
)

var magic = []byte("QPEN")

const (
	fieldVersion     protowire.Number = 1
	fieldThickness   protowire.Number = 2
	fieldStroke      protowire.Number = 3
	fieldPose        protowire.Number = 4
	fieldCursor      protowire.Number = 5
	fieldLastRelease protowire.Number = 6
)

// Marshal encodes the state at the current schema version.
func Marshal(state *domain.PenSessionState) ([]byte, error) {
	return MarshalVersion(state, CurrentVersion)
}

// MarshalVersion encodes the state at an explicit schema version. Fields the
// version does not know are dropped.
func MarshalVersion(state *domain.PenSessionState, version int) ([]byte, error) {
	if version < V1 || version > CurrentVersion {
		return nil, fmt.Errorf("cannot encode schema version %d", version)
	}

	b := append([]byte(nil), magic...)
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(version))
	b = appendDouble(b, fieldThickness, state.Thickness)
	for _, st := range state.Strokes {
		b = protowire.AppendTag(b, fieldStroke, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeStroke(st))
	}
	if version >= V2 {
		b = appendMessage(b, fieldPose, encodePose(state.Pose))
		b = appendMessage(b, fieldCursor, encodeVec3(state.Cursor))
		b = protowire.AppendTag(b, fieldLastRelease, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(state.LastRelease)))
	}
	return b, nil
}

// Unmarshal decodes a blob of any known version and upgrades it to the
// current schema. Malformed input yields an error wrapping ErrCorruptBlob.
func Unmarshal(data []byte) (*domain.PenSessionState, error) {
	if !bytes.HasPrefix(data, magic) {
		return nil, fmt.Errorf("%w: missing magic", domain.ErrCorruptBlob)
	}

	rec, err := decodeSession(data[len(magic):])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptBlob, err)
	}
	state, err := migrate(rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptBlob, err)
	}
	return state, nil
}

// sessionRecord is a decoded blob before migration.
// Presence flags distinguish "absent" from "zero".
type sessionRecord struct {
	version     uint64
	thickness   *float64
	strokes     []domain.Stroke
	pose        *domain.Pose
	cursor      *domain.Vec3
	lastRelease *time.Duration
}

func decodeSession(b []byte) (*sessionRecord, error) {
	rec := &sessionRecord{}
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte, x uint64) error {
		switch {
		case num == fieldVersion && typ == protowire.VarintType:
			rec.version = x
		case num == fieldThickness && typ == protowire.Fixed64Type:
			th := math.Float64frombits(x)
			rec.thickness = &th
		case num == fieldStroke && typ == protowire.BytesType:
			st, err := decodeStroke(v)
			if err != nil {
				return fmt.Errorf("stroke %d: %w", len(rec.strokes), err)
			}
			rec.strokes = append(rec.strokes, st)
		case num == fieldPose && typ == protowire.BytesType:
			p, err := decodePose(v)
			if err != nil {
				return fmt.Errorf("pose: %w", err)
			}
			rec.pose = &p
		case num == fieldCursor && typ == protowire.BytesType:
			c, err := decodeVec3(v)
			if err != nil {
				return fmt.Errorf("cursor: %w", err)
			}
			rec.cursor = &c
		case num == fieldLastRelease && typ == protowire.VarintType:
			d := time.Duration(protowire.DecodeZigZag(x))
			rec.lastRelease = &d
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if rec.version == 0 {
		return nil, fmt.Errorf("missing schema version")
	}
	return rec, nil
}

func encodeStroke(st domain.Stroke) []byte {
	var b []byte
	for _, p := range st.Points {
		var pb []byte
		pb = appendMessage(pb, 1, encodeVec3(p.Position))
		pb = appendDouble(pb, 2, p.Thickness)
		pb = appendMessage(pb, 3, encodeColor(p.Color))
		b = appendMessage(b, 1, pb)
	}
	return b
}

func decodeStroke(b []byte) (domain.Stroke, error) {
	var st domain.Stroke
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte, _ uint64) error {
		if num != 1 || typ != protowire.BytesType {
			return nil
		}
		p, err := decodePoint(v)
		if err != nil {
			return err
		}
		st.Points = append(st.Points, p)
		return nil
	})
	return st, err
}

func decodePoint(b []byte) (domain.Point, error) {
	var p domain.Point
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte, x uint64) error {
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			p.Position, err = decodeVec3(v)
		case num == 2 && typ == protowire.Fixed64Type:
			p.Thickness = math.Float64frombits(x)
		case num == 3 && typ == protowire.BytesType:
			p.Color, err = decodeColor(v)
		}
		return err
	})
	return p, err
}

func encodeVec3(v domain.Vec3) []byte {
	var b []byte
	b = appendDouble(b, 1, v.X)
	b = appendDouble(b, 2, v.Y)
	return appendDouble(b, 3, v.Z)
}

func decodeVec3(b []byte) (domain.Vec3, error) {
	var f [3]float64
	err := decodeDoubles(b, f[:])
	return domain.Vec3{X: f[0], Y: f[1], Z: f[2]}, err
}

func encodeColor(c domain.Color) []byte {
	var b []byte
	b = appendDouble(b, 1, c.R)
	b = appendDouble(b, 2, c.G)
	b = appendDouble(b, 3, c.B)
	return appendDouble(b, 4, c.A)
}

func decodeColor(b []byte) (domain.Color, error) {
	var f [4]float64
	err := decodeDoubles(b, f[:])
	return domain.Color{R: f[0], G: f[1], B: f[2], A: f[3]}, err
}

func encodePose(p domain.Pose) []byte {
	var q []byte
	q = appendDouble(q, 1, p.Orientation.X)
	q = appendDouble(q, 2, p.Orientation.Y)
	q = appendDouble(q, 3, p.Orientation.Z)
	q = appendDouble(q, 4, p.Orientation.W)

	var b []byte
	b = appendMessage(b, 1, encodeVec3(p.Position))
	return appendMessage(b, 2, q)
}

func decodePose(b []byte) (domain.Pose, error) {
	p := domain.IdentityPose
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte, _ uint64) error {
		if typ != protowire.BytesType {
			return nil
		}
		switch num {
		case 1:
			pos, err := decodeVec3(v)
			p.Position = pos
			return err
		case 2:
			var f [4]float64
			if err := decodeDoubles(v, f[:]); err != nil {
				return err
			}
			p.Orientation = domain.Quat{X: f[0], Y: f[1], Z: f[2], W: f[3]}
		}
		return nil
	})
	return p, err
}

// decodeDoubles fills out[i] from fixed64 field i+1.
func decodeDoubles(b []byte, out []float64) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, _ []byte, x uint64) error {
		if typ == protowire.Fixed64Type && num >= 1 && int(num) <= len(out) {
			out[num-1] = math.Float64frombits(x)
		}
		return nil
	})
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

// walk iterates the fields of one message. v is set for length-delimited
// fields, x for varint and fixed fields. Groups and unknown fields are
// skipped.
func walk(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte, x uint64) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		var (
			v []byte
			x uint64
		)
		switch typ {
		case protowire.VarintType:
			x, n = protowire.ConsumeVarint(b)
		case protowire.Fixed64Type:
			x, n = protowire.ConsumeFixed64(b)
		case protowire.Fixed32Type:
			var x32 uint32
			x32, n = protowire.ConsumeFixed32(b)
			x = uint64(x32)
		case protowire.BytesType:
			v, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		if err := fn(num, typ, v, x); err != nil {
			return err
		}
	}
	return nil
}
