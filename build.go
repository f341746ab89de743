// build.go - factorstd build system
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, standardize, server, test, clean

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

var (
	distDir = "dist"

	// key = cmd directory, value = output binary name
	executables = map[string]string{
		"standardize":        "standardize",
		"standardize-server": "standardize-server",
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	printInfo(fmt.Sprintf("factorstd build (%s/%s)", runtime.GOOS, runtime.GOARCH))
	startTime := time.Now()

	var err error
	switch *target {
	case "all":
		err = buildAll(*verbose)
	case "standardize":
		err = buildExecutable("standardize", *verbose)
	case "server":
		err = buildExecutable("standardize-server", *verbose)
	case "test":
		err = runTests(*verbose)
	case "clean":
		err = os.RemoveAll(distDir)
	default:
		showHelp()
		os.Exit(1)
	}

	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printInfo(msg string)    { fmt.Printf("%s[INFO]%s %s\n", colorCyan, colorReset, msg) }
func printSuccess(msg string) { fmt.Printf("%s[OK]%s %s\n", colorGreen, colorReset, msg) }
func printError(msg string)   { fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg) }
func printWarning(msg string) { fmt.Printf("%s[WARN]%s %s\n", colorYellow, colorReset, msg) }

func buildAll(verbose bool) error {
	if err := runTests(verbose); err != nil {
		return err
	}
	for name := range executables {
		if err := buildExecutable(name, verbose); err != nil {
			return err
		}
	}
	return nil
}

func buildExecutable(name string, verbose bool) error {
	output := executables[name]
	if runtime.GOOS == "windows" {
		output += ".exe"
	}
	output = filepath.Join(distDir, output)

	printInfo(fmt.Sprintf("Building %s -> %s", name, output))
	return run(verbose, "go", "build", "-trimpath", "-ldflags=-s -w", "-o", output, "./cmd/"+name)
}

func runTests(verbose bool) error {
	printInfo("Running tests")
	args := []string{"test", "-race", "./..."}
	if runtime.GOOS == "windows" {
		printWarning("race detector may be unavailable, running without -race")
		args = []string{"test", "./..."}
	}
	if verbose {
		args = append(args, "-v")
	}
	return run(verbose, "go", args...)
}

func run(verbose bool, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stderr = os.Stderr
	if verbose {
		cmd.Stdout = os.Stdout
		printInfo(fmt.Sprintf("%s %v", name, args))
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", name, args[0], err)
	}
	return nil
}

func showHelp() {
	fmt.Println("Usage: go run build.go -target=TARGET [-v]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all          test, then build every binary into dist/")
	fmt.Println("  standardize  build the batch CLI")
	fmt.Println("  server       build the HTTP service")
	fmt.Println("  test         run all tests")
	fmt.Println("  clean        remove dist/")
}
