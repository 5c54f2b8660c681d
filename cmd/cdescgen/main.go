// Copyright 2022 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command cdescgen reads a C struct declaration and emits a Go source
// file declaring its cmcore.RecordType constructor: the "bindings
// consume the core" relationship spec.md §1 describes, made concrete
// as a tiny generator instead of a hand-written binding.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var verbose bool

var command = &cobra.Command{
	Use:  "cdescgen source.h struct-name [-o output.go]",
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.PersistentFlags().GetString("output")
		pkg, _ := cmd.PersistentFlags().GetString("package")
		target, _ := cmd.PersistentFlags().GetString("target")
		targetOS, _ := cmd.PersistentFlags().GetString("target-os")
		source, structName := args[0], args[1]

		if output == "" {
			output = structName + "_type.go"
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "parsing %v for struct %v -> %v\n", source, structName, output)
		}
		if err := generate(source, structName, pkg, output, target, targetOS); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	command.PersistentFlags().StringP("output", "o", "", "output path of the generated Go file")
	command.PersistentFlags().StringP("package", "p", "main", "package name of the generated Go file")
	command.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "if set, increase verbosity level")
	command.PersistentFlags().StringP("target", "t", runtime.GOARCH, "target architecture for the C parser")
	command.PersistentFlags().String("target-os", runtime.GOOS, "target operating system for the C parser")
}

func main() {
	if err := command.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
