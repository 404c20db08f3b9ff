package vulkan

import (
	"bytes"
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
	"github.com/spaghettifunk/tricore/engine/core"
)

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic uint32 = 0x07230203

// ShaderStages holds the SPIR-V code of the two fixed pipeline stages. The
// code is passed to the driver untouched.
type ShaderStages struct {
	Vertex   []uint32
	Fragment []uint32
}

// NewWordsUint32 decodes little-endian SPIR-V bytes into words.
func NewWordsUint32(b []byte) ([]uint32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, errors.Errorf("SPIR-V size %d is not a positive multiple of 4", len(b))
	}
	words := make([]uint32, len(b)/4)
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, words); err != nil {
		return nil, err
	}
	if words[0] != spirvMagic {
		return nil, errors.Errorf("bad SPIR-V magic %#08x", words[0])
	}
	return words, nil
}

func readShaderFile(path string) ([]uint32, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read shader module: %s", path)
	}
	words, err := NewWordsUint32(b)
	if err != nil {
		return nil, errors.Wrapf(err, "shader module %s", path)
	}
	return words, nil
}

// LoadShaderStages reads compiled vertex and fragment SPIR-V files.
func LoadShaderStages(vertexPath, fragmentPath string) (ShaderStages, error) {
	vertex, err := readShaderFile(vertexPath)
	if err != nil {
		return ShaderStages{}, err
	}
	fragment, err := readShaderFile(fragmentPath)
	if err != nil {
		return ShaderStages{}, err
	}
	core.LogDebug("Loaded shaders %s (%d words) and %s (%d words)", vertexPath, len(vertex), fragmentPath, len(fragment))
	return ShaderStages{Vertex: vertex, Fragment: fragment}, nil
}

type shaderModules struct {
	vertex   Handle
	fragment Handle
}

func (s ShaderStages) createModules(device *VulkanDevice) (shaderModules, error) {
	drv := device.driver()
	var modules shaderModules

	vertex, err := drv.CreateShaderModule(device.Handle, s.Vertex)
	if err != nil {
		return modules, core.DriverCall("vkCreateShaderModule", err)
	}
	modules.vertex = vertex

	fragment, err := drv.CreateShaderModule(device.Handle, s.Fragment)
	if err != nil {
		modules.destroy(device)
		return shaderModules{}, core.DriverCall("vkCreateShaderModule", err)
	}
	modules.fragment = fragment
	return modules, nil
}

func (m shaderModules) destroy(device *VulkanDevice) {
	drv := device.driver()
	if m.vertex != NullHandle {
		drv.DestroyShaderModule(device.Handle, m.vertex)
	}
	if m.fragment != NullHandle {
		drv.DestroyShaderModule(device.Handle, m.fragment)
	}
}
