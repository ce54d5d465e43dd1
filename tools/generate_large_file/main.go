// Large Roc File Generator
//
// This tool generates a large Roc source file for performance testing and profiling.
// It mixes the constructs the tokenizer distinguishes (strings with interpolation
// and escapes, suffixed and float literals, operators, records, imports) to
// stress-test every lexer state.
//
// Usage:
//
//	go run main.go > large.roc
//	go run main.go 20000000 > large.roc  # Specify target size in bytes
package main

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTargetSize = 10 * 1024 * 1024 // 10MB
)

var (
	modules = []string{
		"pf.Stdout", "pf.Stdin", "pf.File", "pf.Path", "pf.Http",
		"pf.Env", "pf.Utc", "json.Json", "parser.Core", "parser.String",
	}

	names = []string{
		"total", "count", "items", "name", "user", "result", "acc",
		"index", "config", "buffer", "line", "width", "height", "score",
	}

	types = []string{"Str", "U8", "U64", "I64", "F64", "Dec", "Bool", "List Str", "Dict Str U64"}

	words = []string{
		"hello", "world", "loading", "done", "error", "retrying",
		"ready", "waiting", "finished", "café", "naïve", "日本",
	}

	suffixes  = []string{"", "", "", "u8", "u32", "i64", "u128", "dec"}
	operators = []string{"+", "-", "*", "//", "%", "^"}
	compares  = []string{"==", "!=", "<", "<=", ">", ">="}
)

func main() {
	targetSize := defaultTargetSize
	if len(os.Args) > 1 {
		if size, err := strconv.Atoi(os.Args[1]); err == nil {
			targetSize = size
		}
	}

	bytesWritten := writeHeader()
	definitionCount := 0

	for bytesWritten < targetSize {
		var output string

		// Mix different kinds of definitions
		switch rand.Intn(10) {
		case 0, 1: // 20% - Arithmetic with suffixed literals
			output = generateArithmetic(definitionCount)
		case 2, 3: // 20% - Strings with interpolation and escapes
			output = generateStrings(definitionCount)
		case 4, 5: // 20% - Pattern matching
			output = generateWhen(definitionCount)
		case 6: // 10% - Records and field labels
			output = generateRecord(definitionCount)
		case 7: // 10% - Pipelines and operator sections
			output = generatePipeline(definitionCount)
		case 8: // 10% - Conditionals
			output = generateIf(definitionCount)
		case 9: // 10% - Expectations
			output = generateExpect(definitionCount)
		}

		fmt.Print(output)
		bytesWritten += len(output)
		definitionCount++
	}

	fmt.Fprintf(os.Stderr, "\nGenerated %d bytes with %d definitions\n", bytesWritten, definitionCount)
}

func writeHeader() int {
	var b strings.Builder

	fmt.Fprintln(&b, "# Large Roc File for Performance Testing")
	fmt.Fprintln(&b, "# Generated:", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, `app [main!] { pf: platform "https://example.com/platform.tar.br" }`)
	fmt.Fprintln(&b)
	for _, module := range modules {
		fmt.Fprintf(&b, "import %s\n", module)
	}
	fmt.Fprintln(&b)

	fmt.Print(b.String())
	return b.Len()
}

func generateArithmetic(n int) string {
	name := pick(names)
	return fmt.Sprintf(`%s%d : %s
%s%d = \x ->
    x %s %s %s %s

`, name, n, pick(types), name, n, pick(operators), randInt(), pick(operators), randFloat())
}

func generateStrings(n int) string {
	name := pick(names)
	return fmt.Sprintf(`greet%d = \%s ->
    "%s, $(%s)! é\n %s \"$(Num.toStr %s)\""

`, n, name, pick(words), name, pick(words), randInt())
}

func generateWhen(n int) string {
	name := pick(names)
	return fmt.Sprintf(`classify%d = \%s ->
    when %s is
        %s -> "%s"
        Ok value -> "value $(value)"
        Err _ -> crash "%s"
        _ -> "other"

`, n, name, name, randInt(), pick(words), pick(words))
}

func generateRecord(n int) string {
	return fmt.Sprintf(`record%d = { if: %s, %s: "%s", when: [%s, %s, %s] }

`, n, randInt(), pick(names), pick(words), randInt(), randInt(), randInt())
}

func generatePipeline(n int) string {
	return fmt.Sprintf(`pipeline%d = \list ->
    list
    |> List.map \x -> x %s %s
    |> List.walk 0 (+)
    |> Num.toStr

`, n, pick(operators), randInt())
}

func generateIf(n int) string {
	name := pick(names)
	return fmt.Sprintf(`check%d = \%s ->
    if %s %s %s && !(%s %s %s) then
        Bool.true
    else
        Bool.false

`, n, name, name, pick(compares), randInt(), name, pick(compares), randFloat())
}

func generateExpect(n int) string {
	return fmt.Sprintf(`expect
    result = greet%d "%s"
    result != ""

`, n, pick(words))
}

// Helper functions

func pick(values []string) string {
	return values[rand.Intn(len(values))]
}

func randInt() string {
	return strconv.Itoa(rand.Intn(100000)) + pick(suffixes)
}

func randFloat() string {
	return fmt.Sprintf("%.2f", rand.Float64()*1000)
}
