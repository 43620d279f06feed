package decu

import (
	"context"
	"fmt"
	"math"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teenjuna/decu/parallel"
)

type ExperimentConfig struct {
	dataParam string
}

type ExperimentConfigFunc = func(c *ExperimentConfig)

// DataParam names the field of the arguments struct that holds the input data. It is left out of
// the logged parameters.
func (c *ExperimentConfig) DataParam(field string) {
	if strings.TrimSpace(field) == "" {
		panic("data param can't be blank")
	}
	c.dataParam = field
}

// Experiment wraps fn so that every call takes the next run index of name, is logged and timed,
// and has its result written to [Script.ResultBasename]. The run index comes from the counter
// carried by the context, or from the script's counter when there is none.
//
// A nil result is logged as missing and nothing is written.
func Experiment[Args, Result any](
	s *Script,
	name string,
	fn parallel.Func[Args, Result],
	configFuncs ...ExperimentConfigFunc,
) parallel.Func[Args, Result] {
	cfg := &ExperimentConfig{}
	for _, cf := range configFuncs {
		cf(cfg)
	}

	msgs := s.settings.Experiment

	return func(ctx context.Context, args Args) (Result, error) {
		counter, ok := parallel.CounterFrom(ctx)
		if !ok {
			counter = s.runs
		}
		run := counter.Next(name)

		var zero Result
		if err := os.MkdirAll(s.Dir(s.settings.Script.ResultsDir), 0o755); err != nil {
			return zero, fmt.Errorf("create results dir: %w", err)
		}

		vars := map[string]string{
			"exp_name": name,
			"run":      strconv.Itoa(run),
			"params":   parameters(args, cfg.dataParam),
		}
		log := s.log.With(zap.String("experiment", name), zap.Int("run", run))

		log.Info(Expand(msgs.StartMsg, vars))
		start := time.Now()
		res, err := fn(ctx, args)
		elapsed := time.Since(start)
		if err != nil {
			log.Error("experiment failed", zap.Error(err))
			return zero, fmt.Errorf("experiment %s, run %d: %w", name, run, err)
		}

		vars["elapsed"] = strconv.FormatFloat(roundSeconds(elapsed), 'f', -1, 64)
		log.Info(Expand(msgs.EndMsg, vars))

		if isNil(res) {
			log.Warn(Expand(msgs.NoResultMsg, vars))
			return res, nil
		}

		path, err := s.results.Write(res, s.ResultBasename(name, run))
		if err != nil {
			return res, fmt.Errorf("experiment %s, run %d: %w", name, run, err)
		}
		vars["outfile"] = path
		log.Info(Expand(msgs.WriteMsg, vars))

		return res, nil
	}
}

// parameters renders the exported fields of an arguments struct, except the data field. Other
// arguments are rendered as they are.
func parameters(args any, dataParam string) string {
	v := reflect.ValueOf(args)
	for v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		if dataParam != "" {
			return "map[]"
		}
		return fmt.Sprint(args)
	}

	params := make(map[string]any, v.NumField())
	for i := range v.NumField() {
		field := v.Type().Field(i)
		if !field.IsExported() || field.Name == dataParam {
			continue
		}
		params[field.Name] = v.Field(i).Interface()
	}

	return fmt.Sprint(params)
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*1e5) / 1e5
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
