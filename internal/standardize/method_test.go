package standardize

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "factorstd/internal/errors"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		input    string
		expected Method
		wantErr  bool
	}{
		{"ZScoreNorm", MethodZScore, false},
		{"MinMaxNorm", MethodMinMax, false},
		{"RobustZScoreNorm", MethodRobustZScore, false},
		{"CSZScoreNorm", MethodCSZScore, false},
		{"CSRankNorm", MethodCSRank, false},
		{"  CSRankNorm\n", MethodCSRank, false},
		{"zscorenorm", 0, true},
		{"Rank", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, err := ParseMethod(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownMethod))
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m)
		})
	}
}

func TestMethodNames(t *testing.T) {
	for _, m := range Methods() {
		assert.True(t, m.Valid())
		assert.NotEmpty(t, m.Description())

		parsed, err := ParseMethod(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}

	assert.False(t, Method(0).Valid())
	assert.False(t, Method(42).Valid())
	assert.Equal(t, "Method(42)", Method(42).String())
}

func TestMethodJSON(t *testing.T) {
	var payload struct {
		Method Method `json:"method"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"method":"RobustZScoreNorm"}`), &payload))
	assert.Equal(t, MethodRobustZScore, payload.Method)

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"method":"RobustZScoreNorm"}`, string(data))

	assert.Error(t, json.Unmarshal([]byte(`{"method":"Median"}`), &payload))

	_, err = json.Marshal(struct{ M Method }{Method(0)})
	assert.Error(t, err)
}
