package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"gpir/internal/errors"
	"gpir/internal/intrinsic"
	"gpir/internal/ir"
	"gpir/internal/syntax"
)

// passEntry names one optimization pass by its full name and its
// abbreviation, mirroring the mnemonics the spec's CLI surface (§6) lists.
type passEntry struct {
	full string
	abbr string
	run  func(m *ir.Module, verify bool) (bool, error)
}

var knownPasses = []passEntry{
	{"DeadCodeElimination", "DCE", ir.RunDCE},
	{"CommonSubexpressionElimination", "CSE", ir.RunCSE},
	{"CFGCanonicalization", "CFGCan", ir.RunCFGCanonicalization},
}

func findPass(name string) (passEntry, bool) {
	for _, p := range knownPasses {
		if strings.EqualFold(p.full, name) || strings.EqualFold(p.abbr, name) {
			return p, true
		}
	}
	return passEntry{}, false
}

func knownPassNames() []string {
	names := make([]string, 0, len(knownPasses)*2)
	for _, p := range knownPasses {
		names = append(names, p.full+"/"+p.abbr)
	}
	return names
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		inputPath  string
		outputPath string
		passNames  []string
		noVerify   bool
	)

	i := 0
	for i < len(args) {
		arg := args[i]
		switch {
		case arg == "--passes":
			if i+1 >= len(args) {
				color.Red("--passes requires a value")
				return 1
			}
			passNames = splitNonEmpty(args[i+1], ",")
			i += 2
		case strings.HasPrefix(arg, "--passes="):
			passNames = splitNonEmpty(strings.TrimPrefix(arg, "--passes="), ",")
			i++
		case arg == "--no-verify":
			noVerify = true
			i++
		case arg == "-o" || arg == "--output":
			if i+1 >= len(args) {
				color.Red("%s requires a value", arg)
				return 1
			}
			outputPath = args[i+1]
			i += 2
		case strings.HasPrefix(arg, "-"):
			color.Red("unrecognized flag %q", arg)
			return 1
		default:
			if inputPath != "" {
				color.Red("unexpected extra argument %q", arg)
				return 1
			}
			inputPath = arg
			i++
		}
	}

	if inputPath == "" {
		fmt.Println("Usage: gpir-opt <file.gpir> [--passes P1,P2,...] [--no-verify] [-o out.gpir]")
		return 1
	}

	resolved := make([]passEntry, 0, len(passNames))
	for _, name := range passNames {
		p, ok := findPass(name)
		if !ok {
			fmt.Print(errors.NewReporter(inputPath, "").Format(errors.UnknownPass(name, knownPassNames())))
			return 1
		}
		resolved = append(resolved, p)
	}

	source, err := os.ReadFile(inputPath)
	if err != nil {
		color.Red("failed to read %s: %s", inputPath, err)
		return 1
	}

	module, err := syntax.Parse(inputPath, string(source))
	if err != nil {
		syntax.ReportParseError(inputPath, string(source), err)
		return 1
	}

	if err := ir.PatchBuiltinSignatures(module, intrinsic.Default()); err != nil {
		color.Red("%s", err)
		return 1
	}

	if !noVerify {
		if err := ir.Verify(module); err != nil {
			color.Red("%s", err)
			return 1
		}
	}

	for _, p := range resolved {
		if _, err := p.run(module, !noVerify); err != nil {
			color.Red("%s: %s", p.full, err)
			return 1
		}
	}

	out := ir.Print(module)
	if outputPath == "" {
		fmt.Print(out)
		return 0
	}
	if err := os.WriteFile(outputPath, []byte(out), 0o644); err != nil {
		color.Red("failed to write %s: %s", outputPath, err)
		return 1
	}
	return 0
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
