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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teradata-labs/chartkit/pkg/dashboard"
	"github.com/teradata-labs/chartkit/pkg/dataprep"
)

var (
	prepareRequired []string
	prepareNumeric  []string
	prepareDefaults map[string]string
)

var prepareCmd = &cobra.Command{
	Use:   "prepare [file]",
	Short: "Validate, default and coerce records",
	Long: `Drop records missing required fields, fill absent or null fields with
defaults and coerce numeric fields, then print the cleaned records as JSON.`,
	Example: `  chartkit prepare sales.csv --required month,sales --numeric sales --default region=Unknown`,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runPrepare,
}

func init() {
	prepareCmd.Flags().StringSliceVar(&prepareRequired, "required", nil, "drop records missing any of these fields")
	prepareCmd.Flags().StringSliceVar(&prepareNumeric, "numeric", nil, "coerce these fields to numbers")
	prepareCmd.Flags().StringToStringVar(&prepareDefaults, "default", nil, "field=value defaults for absent or null fields")

	rootCmd.AddCommand(prepareCmd)
}

func runPrepare(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	raw, err := loadRecords(commandContext(cmd), cmd, path)
	if err != nil {
		return err
	}

	opts := dataprep.Options{
		RequiredFields: prepareRequired,
		NumericFields:  prepareNumeric,
		DefaultValues:  parseDefaults(prepareDefaults),
	}
	prepared := dataprep.Prepare(raw, opts)
	if dropped := len(raw) - len(prepared); dropped > 0 {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), dashboard.FilteredWarning(dropped))
	}
	return writeJSON(cmd.OutOrStdout(), prepared)
}

// parseDefaults reads each value as a JSON scalar, so 0 and true keep
// their types; anything else stays a string.
func parseDefaults(in map[string]string) map[string]interface{} {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for field, raw := range in {
		var v interface{}
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		out[field] = v
	}
	return out
}
