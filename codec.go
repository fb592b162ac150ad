package main

import "github.com/vmihailenco/msgpack/v5"

// packState encodes a broadcast snapshot as msgpack. Snapshots go out as
// binary frames; everything else on the wire stays JSON.
func packState(s UpdateState) ([]byte, error) {
	return msgpack.Marshal(&s)
}

// unpackState decodes a binary snapshot frame
func unpackState(data []byte) (*UpdateState, error) {
	var s UpdateState
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
