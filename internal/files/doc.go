// Package files finds factor tables on disk for batch standardization.
//
// Discovery lists the CSV and Excel tables of a directory, skipping outputs
// of earlier runs so a directory can be standardized in place repeatedly.
//
// Example usage:
//
//	discovery := files.NewDiscovery("")
//	tables, err := discovery.FindTables("data/factors")
//	for _, t := range tables {
//	    out := filepath.Join(outDir, files.OutputName(t.Name))
//	    ...
//	}
package files
