package result

import (
	"strings"

	"go.uber.org/zap"
)

type Config struct {
	capabilities []Capability
	disabled     []string
	log          *zap.Logger
}

type ConfigFunc = func(c *Config)

// Capability registers the entries backed by one optional library. Probe reports whether the
// library can be used; when it fails, the capability is skipped without error.
type Capability struct {
	Name     string
	Probe    func() error
	Register func(r *Registry) error
}

func (c *Config) Capability(capability Capability) {
	if strings.TrimSpace(capability.Name) == "" {
		panic("capability name can't be blank")
	}
	if capability.Register == nil {
		panic("capability register can't be nil")
	}
	c.capabilities = append(c.capabilities, capability)
}

func (c *Config) Disable(names ...string) {
	c.disabled = append(c.disabled, names...)
}

func (c *Config) Logger(log *zap.Logger) {
	if log == nil {
		panic("logger can't be nil")
	}
	c.log = log
}
