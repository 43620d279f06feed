package decu

import (
	"context"

	"github.com/teenjuna/decu/parallel"
)

// RunParallel is [parallel.Run] with the script's run counter handed to every worker, so that
// experiments running on different workers never share a run index.
func RunParallel[Args, Result any](
	ctx context.Context,
	s *Script,
	fn parallel.Func[Args, Result],
	params []Args,
	configFuncs ...parallel.ConfigFunc,
) ([]Result, error) {
	return parallel.Run(ctx, fn, params, s.parallelConfig(configFuncs)...)
}

// RunParallelShared is [parallel.RunShared] with the script's run counter handed to every
// worker.
func RunParallelShared[Datum any, Param comparable, Result any](
	ctx context.Context,
	s *Script,
	fn parallel.SharedFunc[Datum, Param, Result],
	datum Datum,
	params []Param,
	configFuncs ...parallel.ConfigFunc,
) (map[Param]Result, error) {
	return parallel.RunShared(ctx, fn, datum, params, s.parallelConfig(configFuncs)...)
}

func (s *Script) parallelConfig(configFuncs []parallel.ConfigFunc) []parallel.ConfigFunc {
	return append([]parallel.ConfigFunc{
		func(c *parallel.Config) {
			c.Counter(s.runs)
			c.Logger(s.log)
			c.Prometheus(s.prometheus)
		},
	}, configFuncs...)
}
