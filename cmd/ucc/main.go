package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ulang/ucc/pkg/cabs"
	"github.com/ulang/ucc/pkg/diag"
	"github.com/ulang/ucc/pkg/fixup"
	"github.com/ulang/ucc/pkg/lexer"
	"github.com/ulang/ucc/pkg/parser"
	"github.com/ulang/ucc/pkg/selection"
	"github.com/ulang/ucc/pkg/stacking"
	"github.com/ulang/ucc/pkg/tacky"
	"github.com/ulang/ucc/pkg/tackygen"
	"github.com/ulang/ucc/pkg/x64"
)

var version = "0.1.0"

// Stage stop flags, mirroring the classic test-driver protocol
var (
	stopAfterLex     bool
	stopAfterParse   bool
	stopAfterTacky   bool
	stopAfterCodegen bool
	emitAssemblyOnly bool // -S
	targetName       string
	outputPath       string
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ucc [file]",
		Short: "ucc compiles a small C subset to x86-64 assembly",
		Long: `ucc is an ahead-of-time compiler for a restricted C subset.
It lowers one function to three-address IR, selects x86-64 instructions,
allocates frame slots for temporaries, legalizes operand pairings and emits
AT&T-syntax assembly for System V Linux or macOS.`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return compileFile(args[0], out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().BoolVar(&stopAfterLex, "lex", false, "Run the lexer, print tokens, stop before parsing")
	rootCmd.Flags().BoolVar(&stopAfterParse, "parse", false, "Run the parser, print the AST, stop before lowering")
	rootCmd.Flags().BoolVar(&stopAfterTacky, "tacky", false, "Lower to three-address IR, print it, stop before codegen")
	rootCmd.Flags().BoolVar(&stopAfterCodegen, "codegen", false, "Print the final assembly, stop before writing files")
	rootCmd.Flags().BoolVarP(&emitAssemblyOnly, "assembly", "S", false, "Write the .s file but do not assemble or link")
	rootCmd.Flags().StringVar(&targetName, "target", x64.DefaultTarget().String(), "Target platform: linux or darwin")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path for the linked executable")

	return rootCmd
}

// reportError writes a diagnostic that distinguishes the two failure classes:
// unsupported input is actionable by the user, internal errors are not.
func reportError(errOut io.Writer, err error) {
	switch {
	case errors.Is(err, diag.ErrInternal):
		fmt.Fprintf(errOut, "ucc: %v (please report this)\n", err)
	case errors.Is(err, diag.ErrUnsupported):
		fmt.Fprintf(errOut, "ucc: %v\n", err)
	default:
		fmt.Fprintf(errOut, "ucc: error: %v\n", err)
	}
}

func parseTarget(name string) (x64.Target, error) {
	switch name {
	case "linux":
		return x64.TargetLinux, nil
	case "darwin":
		return x64.TargetDarwin, nil
	default:
		return 0, fmt.Errorf("unknown target %q (want linux or darwin)", name)
	}
}

func compileFile(filename string, out, errOut io.Writer) error {
	target, err := parseTarget(targetName)
	if err != nil {
		fmt.Fprintf(errOut, "ucc: %v\n", err)
		return err
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(errOut, "ucc: error reading %s: %v\n", filename, err)
		return err
	}
	source := string(content)

	if stopAfterLex {
		return doLex(source, out)
	}

	program, err := parseSource(filename, source, errOut)
	if err != nil {
		return err
	}

	if stopAfterParse {
		printer := cabs.NewPrinter(out)
		printer.PrintProgram(program)
		return nil
	}

	tackyProg, err := tackygen.TranslateProgram(program)
	if err != nil {
		reportError(errOut, err)
		return err
	}

	if stopAfterTacky {
		printer := tacky.NewPrinter(out)
		printer.PrintProgram(tackyProg)
		return nil
	}

	asmText, err := generate(tackyProg, target)
	if err != nil {
		reportError(errOut, err)
		return err
	}

	if stopAfterCodegen {
		fmt.Fprint(out, asmText)
		return nil
	}

	asmPath := assemblyOutputFilename(filename)
	if err := os.WriteFile(asmPath, []byte(asmText), 0o644); err != nil {
		fmt.Fprintf(errOut, "ucc: error writing %s: %v\n", asmPath, err)
		return err
	}

	if emitAssemblyOnly {
		return nil
	}

	exePath := outputPath
	if exePath == "" {
		exePath = strings.TrimSuffix(asmPath, ".s")
	}
	gcc := exec.Command("gcc", asmPath, "-o", exePath)
	gcc.Stdout = out
	gcc.Stderr = errOut
	if err := gcc.Run(); err != nil {
		fmt.Fprintf(errOut, "ucc: assembler/linker failed: %v\n", err)
		return err
	}
	return nil
}

// generate runs the backend pipeline: selection, frame allocation,
// legalization, emission.
func generate(prog *tacky.Program, target x64.Target) (string, error) {
	selected, err := selection.TransformProgram(prog)
	if err != nil {
		return "", err
	}
	allocated := stacking.TransformProgram(selected)
	fixed, err := fixup.TransformProgram(allocated)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	printer := x64.NewPrinter(&sb, target)
	printer.PrintProgram(fixed)
	return sb.String(), nil
}

func doLex(source string, out io.Writer) error {
	l := lexer.New(source)
	for {
		tok := l.NextToken()
		if tok.Type == lexer.TokenEOF {
			return nil
		}
		if tok.Type == lexer.TokenIllegal {
			return fmt.Errorf("line %d, col %d: illegal token %q", tok.Line, tok.Column, tok.Literal)
		}
		fmt.Fprintf(out, "%s %q (line %d, col %d)\n", tok.Type, tok.Literal, tok.Line, tok.Column)
	}
}

func parseSource(filename, source string, errOut io.Writer) (*cabs.Program, error) {
	l := lexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()

	if len(p.Errors()) > 0 {
		for _, e := range p.Errors() {
			fmt.Fprintf(errOut, "%s: %s\n", filename, e)
		}
		return nil, fmt.Errorf("parsing failed with %d errors", len(p.Errors()))
	}
	return program, nil
}

// assemblyOutputFilename returns the .s path for an input file
func assemblyOutputFilename(filename string) string {
	ext := ".c"
	if strings.HasSuffix(filename, ext) {
		return filename[:len(filename)-len(ext)] + ".s"
	}
	return filename + ".s"
}
