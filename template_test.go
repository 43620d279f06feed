package decu

import (
	"testing"

	"github.com/teenjuna/decu/internal/testing/require"
)

func TestExpand(t *testing.T) {
	vars := map[string]string{
		"time":     "2024-01-02_03-04-05",
		"exp_name": "spread",
		"run":      "3",
	}

	tests := []struct {
		tmpl string
		want string
	}{
		{"", ""},
		{"plain", "plain"},
		{"${time}--${exp_name}--${run}", "2024-01-02_03-04-05--spread--3"},
		{"$exp_name-$run", "spread-3"},
		{"${exp_name}_x", "spread_x"},
		{"$exp_name_x", "$exp_name_x"},
		{"cost: $$5", "cost: $5"},
		{"$$run", "$run"},
		{"${missing} and $missing", "${missing} and $missing"},
		{"trailing $", "trailing $"},
		{"$ 1", "$ 1"},
		{"${unclosed", "${unclosed"},
		{"${not valid}", "${not valid}"},
		{"$1", "$1"},
	}

	for _, tt := range tests {
		t.Run(tt.tmpl, func(t *testing.T) {
			require.Equal(t, Expand(tt.tmpl, vars), tt.want)
		})
	}
}
