package vulkan_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/spaghettifunk/tricore/engine/renderer/vulkan"
)

func spirv(words ...uint32) []byte {
	b := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(b[4*i:], w)
	}
	return b
}

func TestNewWordsUint32(t *testing.T) {
	c := qt.New(t)

	words, err := vulkan.NewWordsUint32(spirv(0x07230203, 0x00010000, 42))
	c.Assert(err, qt.IsNil)
	c.Assert(words, qt.DeepEquals, []uint32{0x07230203, 0x00010000, 42})

	_, err = vulkan.NewWordsUint32(nil)
	c.Assert(err, qt.ErrorMatches, `SPIR-V size 0 is not a positive multiple of 4`)
	_, err = vulkan.NewWordsUint32([]byte{0x03, 0x02, 0x23, 0x07, 0x00})
	c.Assert(err, qt.ErrorMatches, `SPIR-V size 5 is not a positive multiple of 4`)
	_, err = vulkan.NewWordsUint32(spirv(0xdeadbeef))
	c.Assert(err, qt.ErrorMatches, `bad SPIR-V magic 0xdeadbeef`)
}

func TestLoadShaderStages(t *testing.T) {
	c := qt.New(t)
	dir := c.TempDir()

	vert := filepath.Join(dir, "vert.spv")
	frag := filepath.Join(dir, "frag.spv")
	c.Assert(os.WriteFile(vert, spirv(0x07230203, 1), 0o644), qt.IsNil)
	c.Assert(os.WriteFile(frag, spirv(0x07230203, 2), 0o644), qt.IsNil)

	stages, err := vulkan.LoadShaderStages(vert, frag)
	c.Assert(err, qt.IsNil)
	c.Assert(stages.Vertex, qt.DeepEquals, []uint32{0x07230203, 1})
	c.Assert(stages.Fragment, qt.DeepEquals, []uint32{0x07230203, 2})

	_, err = vulkan.LoadShaderStages(vert, filepath.Join(dir, "missing.spv"))
	c.Assert(err, qt.ErrorMatches, `unable to read shader module: .*missing.spv: .*`)

	c.Assert(os.WriteFile(frag, []byte("#version 450"), 0o644), qt.IsNil)
	_, err = vulkan.LoadShaderStages(vert, frag)
	c.Assert(err, qt.ErrorMatches, `shader module .*frag.spv: bad SPIR-V magic .*`)
}
