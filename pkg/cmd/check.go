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
	"github.com/vushlang/vushc/pkg/compiler"
	"github.com/vushlang/vushc/pkg/diag"
)

// checkCmd compiles a source file and reports every accumulated diagnostic,
// without emitting any IR.
var checkCmd = &cobra.Command{
	Use:   "check [flags] source_file",
	Short: "Compile a source file and report diagnostics.",
	Long:  "Run the full pipeline (Source Manager, Lexer, Parser, Lowering Engine) over a source file and report every diagnostic raised.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}

		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}

		defines := parseDefines(GetStringArray(cmd, "define"))

		res := compiler.Compile(compiler.Config{
			EntryName:  args[0],
			SearchDirs: GetStringArray(cmd, "include"),
			Defines:    defines,
			SourceDef: func(name string) bool {
				_, ok := defines[name]
				return ok
			},
		})

		diag.Render(os.Stderr, res.Manager, res.Sink, int(os.Stderr.Fd()))

		if res.Sink.HasCompilationFatal() {
			os.Exit(2)
		}

		if res.Sink.HasDeclarationFatal() {
			os.Exit(1)
		}

		fmt.Printf("ok: lowered %d module(s)\n", len(res.Modules))
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringArrayP("define", "D", []string{}, "define a named integer constant (name=value) for source-definition resolution")
}
