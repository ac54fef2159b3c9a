/*
Package codec serializes a PenSessionState into the opaque blob stored on the
pen's spatial anchor.

A blob is the 4-byte magic "QPEN" followed by protobuf wire-format fields. The
wire format is self-describing (every field carries its number and type), so
decoders skip fields they do not know and default fields a blob does not
carry. Each blob records its schema version; older versions are upgraded
step by step after decoding.

# Schema

	Session  1:version varint  2:thickness fixed64  3:stroke bytes (repeated)
	         4:pose bytes      5:cursor bytes       6:last_release varint (ns)
	Stroke   1:point bytes (repeated)
	Point    1:position bytes  2:thickness fixed64  3:color bytes
	Vec3     1:x 2:y 3:z fixed64
	Quat     1:x 2:y 3:z 4:w fixed64
	Pose     1:position bytes  2:orientation bytes
	Color    1:r 2:g 3:b 4:a fixed64

Version 1 carries fields 1-3 only. Version 2 adds 4-6.
*/
package codec
