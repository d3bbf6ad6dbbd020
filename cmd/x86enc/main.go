// Command x86enc assembles NASM-syntax x86 and x86-64 source to flat
// binary or hex.
package main

import (
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"os"
	"sort"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/asmforge/x86enc"
	"github.com/asmforge/x86enc/insn"
	"github.com/asmforge/x86enc/template"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "x86enc",
		Short:         "x86 and x86-64 instruction assembler",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(asmCmd(), templatesCmd())
	return root
}

type logReporter struct{ log *logrus.Logger }

func (l logReporter) Warnf(format string, args ...interface{}) {
	l.log.Warnf(format, args...)
}

func asmCmd() *cobra.Command {
	var (
		bits     int
		optimize bool
		format   string
		outPath  string
	)
	cmd := &cobra.Command{
		Use:   "asm [file]",
		Short: "assemble a source file (stdin if omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args)
			if err != nil {
				return err
			}

			log := logrus.New()
			log.SetOutput(cmd.ErrOrStderr())

			a := x86enc.NewAssembler(bits)
			a.Ctx.Optimizing = optimize
			a.Ctx.Reporter = logReporter{log}

			buf, err := a.AssembleSource(string(src))
			if err != nil {
				return err
			}
			for _, rl := range buf.Relocs() {
				log.Warnf("unresolved relocation at %#x (%d bytes)", rl.Offset, rl.Size)
			}

			out := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			switch format {
			case "bin":
				_, err = out.Write(buf.Bytes())
			case "hex":
				_, err = fmt.Fprintln(out, hex.EncodeToString(buf.Bytes()))
			default:
				err = fmt.Errorf("unknown output format %q", format)
			}
			return err
		},
	}
	cmd.Flags().IntVar(&bits, "bits", 64, "assembly mode: 16, 32 or 64")
	cmd.Flags().BoolVar(&optimize, "optimize", true, "use the shortest encoding forms")
	cmd.Flags().StringVarP(&format, "format", "f", "hex", "output format: hex or bin")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")
	return cmd
}

func readSource(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return ioutil.ReadAll(os.Stdin)
	}
	return ioutil.ReadFile(args[0])
}

func templatesCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "templates [mnemonic]",
		Short: "list the encoding templates, optionally for one mnemonic",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ms []insn.Mnemonic
			if len(args) == 1 {
				m, _, ok := insn.Lookup(strings.ToLower(args[0]))
				if !ok {
					return fmt.Errorf("unknown instruction %q", args[0])
				}
				ms = append(ms, m)
			} else {
				for m := range template.Table {
					ms = append(ms, m)
				}
				sort.Slice(ms, func(i, j int) bool {
					return ms[i].String() < ms[j].String()
				})
			}

			out := cmd.OutOrStdout()
			dumper := spew.NewDefaultConfig()
			dumper.Indent = "  "
			for _, m := range ms {
				tmpls := template.Table[m]
				fmt.Fprintf(out, "%s: %d forms\n", m, len(tmpls))
				if verbose {
					dumper.Fdump(out, tmpls)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "dump each form's encoding program")
	return cmd
}
