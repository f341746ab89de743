// Package services implements the application layer of factorstd.
// It sits between the transports (CLI and HTTP) and the standardize package,
// turning raw inputs into tables and library errors into AppErrors that the
// handlers can render.
//
// # Available Services
//
//	- StandardizeService: standardizes tables, raw records and files
//	- HealthService: provides health checks and the method catalogue
//
// # Error Handling
//
// Services return *errors.AppError values:
//
//	- Parsing errors for records that cannot form a table
//	- Validation errors for unknown columns, text columns or unsupported formats
//	- Not found errors for missing input files
//	- Storage errors for other read and write failures
//
// # Usage
//
//	svc := services.NewStandardizeService(cfg.Standardize.Workers, logger)
//	report, err := svc.StandardizeFile(ctx, services.FileJob{
//	    Input:   "factors.csv",
//	    Output:  "factors_std.csv",
//	    Method:  standardize.MethodCSRank,
//	    Columns: columns,
//	})
package services
