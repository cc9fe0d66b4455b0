package main

import (
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"ghost/runtime"
)

// dumpConstant is the write-only, debug-only shape a Chunk's constant
// pool is flattened into for -dump (SPEC_FULL.md 4.8): every constant
// becomes its type tag plus its printed form, which is lossy for
// nested Function constants but sufficient for inspecting what a
// compilation produced without a full object graph codec.
type dumpConstant struct {
	Type  string `msgpack:"type"`
	Value string `msgpack:"value"`
}

type dumpChunk struct {
	Code      []byte         `msgpack:"code"`
	Constants []dumpConstant `msgpack:"constants"`
}

// writeDump marshals chunk to path as msgpack. This is a debugging
// artifact only — nothing in Ghost reads it back.
func writeDump(path string, chunk *runtime.Chunk) error {
	dc := dumpChunk{Code: chunk.Code}
	for _, c := range chunk.Constants {
		dc.Constants = append(dc.Constants, dumpConstant{
			Type:  runtime.TypeName(c),
			Value: c.String(),
		})
	}
	data, err := msgpack.Marshal(dc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
