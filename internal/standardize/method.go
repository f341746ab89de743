package standardize

import (
	"errors"
	"fmt"
	"strings"

	apperrors "factorstd/internal/errors"
)

// Method selects the normalization applied to every partition
type Method int

const (
	// MethodZScore subtracts the mean and divides by the sample standard deviation
	MethodZScore Method = iota + 1
	// MethodMinMax rescales each column to [0, 1]
	MethodMinMax
	// MethodRobustZScore centres on the median and scales by 1.4826 * MAD
	MethodRobustZScore
	// MethodCSZScore is the cross-sectional z-score, numerically identical to MethodZScore
	MethodCSZScore
	// MethodCSRank z-scores the zero-based average ranks of each column
	MethodCSRank
)

// ErrUnknownMethod is wrapped by ParseMethod when the name is not recognised
var ErrUnknownMethod = errors.New("unknown standardization method")

// Methods lists every method in presentation order
func Methods() []Method {
	return []Method{MethodZScore, MethodMinMax, MethodRobustZScore, MethodCSZScore, MethodCSRank}
}

// String returns the method name as accepted by ParseMethod
func (m Method) String() string {
	switch m {
	case MethodZScore:
		return "ZScoreNorm"
	case MethodMinMax:
		return "MinMaxNorm"
	case MethodRobustZScore:
		return "RobustZScoreNorm"
	case MethodCSZScore:
		return "CSZScoreNorm"
	case MethodCSRank:
		return "CSRankNorm"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// Description returns a one-line summary of the method
func (m Method) Description() string {
	switch m {
	case MethodZScore:
		return "subtract the mean, divide by the sample standard deviation"
	case MethodMinMax:
		return "rescale to the [0, 1] range"
	case MethodRobustZScore:
		return "subtract the median, divide by 1.4826 times the MAD"
	case MethodCSZScore:
		return "cross-sectional z-score to a standard normal distribution"
	case MethodCSRank:
		return "cross-sectional rank, then z-score"
	default:
		return ""
	}
}

// Valid reports whether m is one of the defined methods
func (m Method) Valid() bool {
	return m >= MethodZScore && m <= MethodCSRank
}

// ParseMethod resolves a method by name. Surrounding whitespace is ignored;
// otherwise names are matched exactly, including case.
func ParseMethod(name string) (Method, error) {
	trimmed := strings.TrimSpace(name)
	for _, m := range Methods() {
		if m.String() == trimmed {
			return m, nil
		}
	}

	names := make([]string, 0, len(Methods()))
	for _, m := range Methods() {
		names = append(names, m.String())
	}

	return 0, apperrors.NewConfigError(
		fmt.Sprintf("%q is not one of %s", name, strings.Join(names, ", ")),
		ErrUnknownMethod,
	).WithContext("method", name)
}

// MarshalText implements encoding.TextMarshaler
func (m Method) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
