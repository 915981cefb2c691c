package cmd

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/coral-lang/coralc/internal/lower"
	"github.com/coral-lang/coralc/pkg/coral"
)

var (
	dumpEvalExpr string
	dumpStats    bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump [file]",
	Short: "Lower Coral source to linear IR and print it",
	Long: `Run the full pipeline (lex, parse, resolve, lower) and print the
resulting linear IR: declared struct layouts, runtime externs, and every
function's labeled basic blocks.

Use --stats to additionally report instruction/byte counts via
go-humanize.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().StringVarP(&dumpEvalExpr, "eval", "e", "", "dump an inline snippet instead of reading from a file")
	dumpCmd.Flags().BoolVar(&dumpStats, "stats", false, "report instruction/byte-count stats")
}

func runDump(cmd *cobra.Command, args []string) error {
	source, filename, err := readInput(dumpEvalExpr, args)
	if err != nil {
		return err
	}

	root, _ := cmd.Flags().GetString("root")
	session := coral.NewSession(coral.WithRoot(root))
	result, diags := session.Compile(source, filename)
	if diags.HasErrors() {
		printDiagnostics(cmd, diags.Errors)
		return fmt.Errorf("lowering failed with %d error(s)", len(diags.Errors))
	}

	fmt.Print(RenderModule(result.Module))

	if dumpStats {
		printStats(result.Module)
	}
	return nil
}

// RenderModule renders a lowered Module as readable text: struct layouts,
// extern declarations, string pool, then each function's basic blocks.
func RenderModule(m *lower.Module) string {
	var sb strings.Builder
	for _, s := range m.Structs {
		fmt.Fprintf(&sb, "%%%s = type {%s}\n", s.Name, joinFields(s.Fields))
	}
	if len(m.Structs) > 0 {
		sb.WriteString("\n")
	}

	for _, e := range m.Externs {
		fmt.Fprintf(&sb, "extern %s(%s) -> %s\n", e.Name, joinTypes(e.Params), e.Return.String())
	}
	if len(m.Externs) > 0 {
		sb.WriteString("\n")
	}

	for i, s := range m.Strings {
		fmt.Fprintf(&sb, "@str%d = %q\n", i, s)
	}
	if len(m.Strings) > 0 {
		sb.WriteString("\n")
	}

	for _, fn := range m.Functions {
		renderFunction(&sb, fn)
	}
	return sb.String()
}

func renderFunction(sb *strings.Builder, fn *lower.Function) {
	fmt.Fprintf(sb, "fn %s(%s) -> %s\n", fn.Name, joinParams(fn.Params), fn.Return.String())
	for _, b := range fn.Blocks {
		fmt.Fprintf(sb, "%s:\n", b.Label.String())
		for _, instr := range b.Instrs {
			fmt.Fprintf(sb, "  %s\n", renderInstr(instr))
		}
	}
	sb.WriteString("\n")
}

func renderInstr(instr lower.Instr) string {
	prefix := ""
	if instr.HasDst {
		prefix = instr.Dst.String() + " = "
	}
	var args []string
	for _, a := range instr.Args {
		args = append(args, renderValue(a))
	}
	body := fmt.Sprintf("%v %s", instr.Op, strings.Join(args, ", "))
	if instr.Field != "" {
		body += " field=" + instr.Field
	}
	if instr.Callee != "" {
		body += " callee=" + instr.Callee
	}
	for _, l := range instr.Blocks {
		body += " -> " + l.String()
	}
	return prefix + strings.TrimSpace(body)
}

func renderValue(v lower.Value) string {
	switch val := v.(type) {
	case lower.Temp:
		return val.String()
	case lower.ConstInt:
		return fmt.Sprintf("%d", val.V)
	case lower.ConstFloat:
		return fmt.Sprintf("%g", val.V)
	case lower.ConstBool:
		return fmt.Sprintf("%t", val.V)
	case lower.ConstString:
		return fmt.Sprintf("@str%d", val.Index)
	case lower.ConstUnit:
		return "unit"
	case lower.ParamRef:
		return "%" + val.Name
	case lower.FuncRef:
		return "@" + val.Name
	default:
		return fmt.Sprintf("%v", v)
	}
}

func joinFields(fields []lower.StructField) string {
	var parts []string
	for _, f := range fields {
		parts = append(parts, f.Type.String())
	}
	return strings.Join(parts, ", ")
}

func joinTypes(types []lower.TypeRef) string {
	var parts []string
	for _, t := range types {
		parts = append(parts, t.String())
	}
	return strings.Join(parts, ", ")
}

func joinParams(params []lower.Param) string {
	var parts []string
	for _, p := range params {
		parts = append(parts, p.Name+" "+p.Type.String())
	}
	return strings.Join(parts, ", ")
}

func printStats(m *lower.Module) {
	var instrCount int
	var byteCount uint64
	for _, fn := range m.Functions {
		for _, b := range fn.Blocks {
			instrCount += len(b.Instrs)
			byteCount += uint64(len(b.Instrs)) * 16 // rough per-instruction footprint
		}
	}
	fmt.Printf("---\nFunctions: %d\n", len(m.Functions))
	fmt.Printf("Structs:   %d\n", len(m.Structs))
	fmt.Printf("Externs:   %d\n", len(m.Externs))
	fmt.Printf("Instructions: %s\n", humanize.Comma(int64(instrCount)))
	fmt.Printf("Estimated IR size: %s\n", humanize.Bytes(byteCount))
}
