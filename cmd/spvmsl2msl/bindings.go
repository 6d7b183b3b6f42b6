package main

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/spvmsl/msl"
)

// bindingConfig is the YAML shape of an external vertex-attribute/resource
// binding file (msl.Options's out-of-band binding tables, spec.md §6).
type bindingConfig struct {
	VertexAttributes []vertexAttributeBindingYAML `yaml:"vertex_attributes,omitempty"`
	Resources        []resourceBindingYAML        `yaml:"resources,omitempty"`
}

type vertexAttributeBindingYAML struct {
	Location    uint32 `yaml:"location"`
	MSLBuffer   uint32 `yaml:"msl_buffer"`
	MSLOffset   uint32 `yaml:"msl_offset,omitempty"`
	MSLStride   uint32 `yaml:"msl_stride,omitempty"`
	PerInstance bool   `yaml:"per_instance,omitempty"`
}

type resourceBindingYAML struct {
	Stage      string `yaml:"stage"`
	DescSet    uint32 `yaml:"desc_set"`
	Binding    uint32 `yaml:"binding"`
	MSLBuffer  uint32 `yaml:"msl_buffer,omitempty"`
	MSLTexture uint32 `yaml:"msl_texture,omitempty"`
	MSLSampler uint32 `yaml:"msl_sampler,omitempty"`
}

var executionStageNames = map[string]msl.ExecutionStage{
	"vertex":   msl.StageVertex,
	"fragment": msl.StageFragment,
	"compute":  msl.StageCompute,
}

// loadBindingConfig reads and strictly parses a YAML binding-config file,
// rejecting unknown fields the same way the teacher's scenario loader does.
func loadBindingConfig(path string) (*bindingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read binding config: %w", err)
	}

	var cfg bindingConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse binding config: %w", err)
	}
	return &cfg, nil
}

func (c *bindingConfig) vertexAttributeBindings() []msl.VertexAttributeBinding {
	out := make([]msl.VertexAttributeBinding, len(c.VertexAttributes))
	for i, v := range c.VertexAttributes {
		out[i] = msl.VertexAttributeBinding{
			Location:    v.Location,
			MSLBuffer:   v.MSLBuffer,
			MSLOffset:   v.MSLOffset,
			MSLStride:   v.MSLStride,
			PerInstance: v.PerInstance,
		}
	}
	return out
}

func (c *bindingConfig) resourceBindings() ([]msl.ResourceBinding, error) {
	out := make([]msl.ResourceBinding, len(c.Resources))
	for i, r := range c.Resources {
		stage, ok := executionStageNames[r.Stage]
		if !ok {
			return nil, fmt.Errorf("resource %d: unknown stage %q", i, r.Stage)
		}
		out[i] = msl.ResourceBinding{
			Stage:      stage,
			DescSet:    r.DescSet,
			Binding:    r.Binding,
			MSLBuffer:  r.MSLBuffer,
			MSLTexture: r.MSLTexture,
			MSLSampler: r.MSLSampler,
		}
	}
	return out, nil
}
