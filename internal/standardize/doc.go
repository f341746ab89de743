// Package standardize rescales factor columns cross-sectionally, one trading
// date at a time.
//
// A factor table holds one row per (date, instrument) pair. The Standardizer
// groups rows by date, applies the selected normalizer to every selected
// column of each group independently and writes the results back to the
// original row positions. Identifier columns and unselected columns are never
// touched.
//
// # Methods
//
//   - ZScoreNorm: (x - mean) / sample std
//   - MinMaxNorm: (x - min) / (max - min)
//   - RobustZScoreNorm: (x - median) / ((MAD + 1e-12) * 1.4826)
//   - CSZScoreNorm: same computation as ZScoreNorm
//   - CSRankNorm: zero-based average ranks, then ZScoreNorm
//
// Missing values (NaN, ±Inf) are ignored by every statistic and stay missing
// in the output. A column whose denominator is undefined or zero within a date
// is reported as degenerate rather than failing the run.
//
// # Usage
//
//	columns, err := standardize.NewColumnSet([]string{"momentum", "value"})
//	if err != nil {
//	    return err
//	}
//	s, err := standardize.New(standardize.MethodCSRank, columns,
//	    standardize.WithWorkers(4), standardize.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	out, report, err := s.Run(ctx, factors)
package standardize
