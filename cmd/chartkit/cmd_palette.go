// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teradata-labs/chartkit/pkg/palette"
)

var (
	paletteSteps int
	paletteBlend string
	paletteJSON  bool
)

var paletteCmd = &cobra.Command{
	Use:   "palette <start> <end>",
	Short: "Interpolate a color range",
	Long: `Print colors interpolated from start to end. Colors may be #rgb, #rrggbb
or rgb(r,g,b). Without --blend the output is rgb(r,g,b) strings; with a
blend mode (rgb, lab, hcl) it is hex.`,
	Example: `  chartkit palette '#5470c6' '#ee6666' --steps 5
  chartkit palette 'rgb(0,0,0)' 'rgb(255,255,255)' --steps 3 --blend lab`,
	Args: cobra.ExactArgs(2),
	RunE: runPalette,
}

func init() {
	paletteCmd.Flags().IntVar(&paletteSteps, "steps", 5, "number of colors")
	paletteCmd.Flags().StringVar(&paletteBlend, "blend", "", "perceptual blend mode (rgb, lab, hcl)")
	paletteCmd.Flags().BoolVar(&paletteJSON, "json", false, "print a JSON array")

	rootCmd.AddCommand(paletteCmd)
}

func runPalette(cmd *cobra.Command, args []string) error {
	start, err := palette.Parse(args[0])
	if err != nil {
		return err
	}
	end, err := palette.Parse(args[1])
	if err != nil {
		return err
	}

	var colors []string
	if paletteBlend != "" {
		if colors, err = palette.GenerateBlend(start, end, paletteSteps, paletteBlend); err != nil {
			return err
		}
	} else {
		colors = palette.Generate(start, end, paletteSteps)
	}

	w := cmd.OutOrStdout()
	if paletteJSON {
		return writeJSON(w, colors)
	}
	for _, c := range colors {
		if _, err := fmt.Fprintln(w, c); err != nil {
			return err
		}
	}
	return nil
}
