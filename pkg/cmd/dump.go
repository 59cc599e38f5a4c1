// Copyright vushc authors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vushlang/vushc/pkg/ast"
	"github.com/vushlang/vushc/pkg/compiler"
	"github.com/vushlang/vushc/pkg/diag"
	"github.com/vushlang/vushc/pkg/ir"
)

// dumpASTCmd parses (and splices imports into) a source file and prints the
// resulting tree, without running the Lowering Engine.
var dumpASTCmd = &cobra.Command{
	Use:   "dump-ast [flags] source_file",
	Short: "Parse a source file and print its AST.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}

		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}

		file, sink, mgr, _ := compiler.Parse(compiler.Config{
			EntryName:  args[0],
			SearchDirs: GetStringArray(cmd, "include"),
		})

		diag.Render(os.Stderr, mgr, sink, int(os.Stderr.Fd()))

		if file == nil {
			os.Exit(1)
		}

		ast.Dump(os.Stdout, file)
	},
}

// dumpIRCmd compiles a source file and prints the lowered IR for every
// resulting module.
var dumpIRCmd = &cobra.Command{
	Use:   "dump-ir [flags] source_file",
	Short: "Compile a source file and print its lowered IR.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}

		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}

		res := compiler.Compile(compiler.Config{
			EntryName:  args[0],
			SearchDirs: GetStringArray(cmd, "include"),
		})

		diag.Render(os.Stderr, res.Manager, res.Sink, int(os.Stderr.Fd()))

		if res.Sink.HasCompilationFatal() || res.Sink.HasDeclarationFatal() {
			os.Exit(1)
		}

		for i, m := range res.Modules {
			if i > 0 {
				fmt.Println()
			}

			ir.Print(os.Stdout, m)
		}
	},
}

func init() {
	rootCmd.AddCommand(dumpASTCmd)
	rootCmd.AddCommand(dumpIRCmd)
}
