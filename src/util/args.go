package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Options holds the flat set of command line flags this toolchain understands. There is
// deliberately no third-party flag parsing library here: compilation core never sees the
// command line, only the Options struct that falls out of ParseArgs.
type Options struct {
	Src               string // Path to source file. Empty means read from stdin.
	Threads           int    // Thread count, kept for interface parity; the core passes are single-threaded.
	Verbose           bool   // Set by -vb; no pass reads it, so it has no effect on output.
	TokenStream       bool   // Set by -ts; this binary has no parser, so run reports an error instead of printing tokens.
	DebugPrintModules bool   // Set true to print every module's flattened IR after flatten and after typecheck.
	LLVMIngress       bool   // Set true if recompile_all should hand instantiation off to the LLVM ingress adapter.
}

// ---------------------
// ----- Constants -----
// ---------------------

const maxThreads = 64 // Upper bound accepted for -t.
const appVersion = "hdlc compiler front-end 1.0"

// ---------------------
// ----- functions -----
// ---------------------

// ParseArgs parses command line arguments.
func ParseArgs() (Options, error) {
	opt := Options{}
	if len(os.Args) < 2 {
		return opt, nil
	}
	args := os.Args[1:]
	for i1 := 0; i1 < len(args)-1; i1++ {
		switch args[i1] {
		case "-h", "--h", "-help", "--help":
			// Help and usage.
			printHelp()
			os.Exit(0)
		case "-ll":
			// Hand instantiation off to the LLVM ingress adapter instead of the recording stub.
			opt.LLVMIngress = true
		case "-t":
			if i1+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i1])
			}
			if strings.HasPrefix(args[i1+1], "-") {
				return opt, fmt.Errorf("expected integer thread count, got new flag %s", args[i1+1])
			}
			if t, err := strconv.Atoi(args[i1+1]); err == nil {
				if t > 0 && t <= maxThreads {
					opt.Threads = t
				} else {
					return opt, fmt.Errorf("thread count must be integer in range [1, %d]", maxThreads)
				}
			} else {
				return opt, fmt.Errorf("expected integer thread count, got: %s", args[i1+1])
			}
			i1++
		case "-ts":
			// Output token stream and exit.
			opt.TokenStream = true
		case "-dm":
			// Print flattened module contents after flatten and after typecheck.
			opt.DebugPrintModules = true
		case "-v", "--v", "-version", "--version":
			// Application version.
			fmt.Println(appVersion)
			os.Exit(0)
		case "-vb":
			// Verbose mode.
			opt.Verbose = true
		default:
			return opt, fmt.Errorf("unexpected flag: %s", args[i1])
		}
	}
	if len(args) > 0 {
		opt.Src = args[len(args)-1]
	}
	return opt, nil
}

// printHelp prints a helpful usage message to stdout.
func printHelp() {
	w := tabwriter.NewWriter(os.Stdout, 6, 1, 1, 0, 0)
	_, _ = fmt.Fprintln(w, "-h, -help\tPrints this help message and exits the application.")
	_, _ = fmt.Fprintln(w, "--h, --help")
	_, _ = fmt.Fprintln(w, "-dm\tPrint every module's flattened IR after flatten and after typecheck.")
	_, _ = fmt.Fprintln(w, "-ll\tHand instantiation off to the LLVM ingress adapter.")
	_, _ = fmt.Fprintf(w, "-t\tThread count, accepted for interface parity; the passes run single-threaded. Must be in range [1, %d].\n", maxThreads)
	_, _ = fmt.Fprintln(w, "-ts\tRequest the token stream; this binary has no parser, so it reports an error.")
	_, _ = fmt.Fprintln(w, "-v, -version\tPrints application version and exits the application.")
	_, _ = fmt.Fprintln(w, "--v, --version")
	_, _ = fmt.Fprintln(w, "-vb\tVerbose mode; accepted, but no statistics are printed.")
	_ = w.Flush()
}
