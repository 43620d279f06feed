package decu

import (
	"go.uber.org/zap"

	"github.com/teenjuna/decu/result"
	"github.com/teenjuna/decu/result/array"
	"github.com/teenjuna/decu/result/network"
	"github.com/teenjuna/decu/result/records"
	"github.com/teenjuna/decu/result/table"
)

// DefaultCapabilities returns the optional result formats tried by [NewRegistry], in order.
func DefaultCapabilities() []result.Capability {
	return []result.Capability{
		array.Capability,
		table.Capability,
		network.Capability,
		records.Capability,
	}
}

// NewRegistry builds a result registry with the built-in formats and every default capability
// that isn't listed in the [result] disable setting. Extra config functions run last, so they
// may add capabilities of their own.
func NewRegistry(settings *Settings, log *zap.Logger, configFuncs ...result.ConfigFunc) (*result.Registry, error) {
	return result.New(append([]result.ConfigFunc{
		func(c *result.Config) {
			for _, capability := range DefaultCapabilities() {
				c.Capability(capability)
			}
			c.Disable(settings.Result.Disable...)
			c.Logger(log)
		},
	}, configFuncs...)...)
}
