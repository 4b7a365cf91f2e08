package dbMan

import (
	"github.com/ugorji/go/codec"
)

// Encode serializes v (the record collection) for a Persister using msgpack.
func Encode(v interface{}) (data []byte, err error) {
	var mh codec.MsgpackHandle
	mh.WriteExt = true
	enc := codec.NewEncoderBytes(&data, &mh)
	err = enc.Encode(v)
	return
}

// Decode reads data written by Encode into v.
func Decode(data []byte, v interface{}) error {
	var mh codec.MsgpackHandle
	mh.WriteExt = true
	mh.RawToString = true
	dec := codec.NewDecoderBytes(data, &mh)
	return dec.Decode(v)
}
