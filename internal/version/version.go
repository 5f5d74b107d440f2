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

// Package version reports which chartkit build is running. Release builds
// stamp the variables below with ldflags:
//
//	go build -ldflags="-X github.com/teradata-labs/chartkit/internal/version.Version=v0.3.0 \
//	  -X github.com/teradata-labs/chartkit/internal/version.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/teradata-labs/chartkit/internal/version.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Unstamped builds fall back to the module and VCS data the Go toolchain
// embeds, so "go install ...@v0.3.0" still reports v0.3.0.
package version

import (
	"runtime/debug"
	"strings"
	"sync"
)

// Set at build time.
var (
	Version = ""
	Commit  = ""
	Date    = ""
)

const devVersion = "dev"

// Info describes the running build.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	Date    string `json:"date,omitempty"`
	// Modified is true when the binary was built from a dirty tree.
	Modified bool `json:"modified,omitempty"`
}

// String renders the build as "v0.3.0 (abc1234, 2026-05-01T10:00:00Z)".
func (i Info) String() string {
	var extra []string
	if i.Commit != "" {
		commit := i.Commit
		if i.Modified {
			commit += "-dirty"
		}
		extra = append(extra, commit)
	}
	if i.Date != "" {
		extra = append(extra, i.Date)
	}
	if len(extra) == 0 {
		return i.Version
	}
	return i.Version + " (" + strings.Join(extra, ", ") + ")"
}

var buildInfo = sync.OnceValues(debug.ReadBuildInfo)

// Get returns the version string.
func Get() string {
	return Current().Version
}

// Current resolves the running build from the ldflags variables, filling
// gaps from the embedded build info.
func Current() Info {
	bi, ok := buildInfo()
	if !ok {
		bi = nil
	}
	return resolve(Version, Commit, Date, bi)
}

func resolve(version, commit, date string, bi *debug.BuildInfo) Info {
	info := Info{Version: version, Commit: commit, Date: date}
	if bi != nil {
		if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = shortRevision(s.Value)
				}
			case "vcs.time":
				if info.Date == "" {
					info.Date = s.Value
				}
			case "vcs.modified":
				info.Modified = commit == "" && s.Value == "true"
			}
		}
	}
	if info.Version == "" {
		info.Version = devVersion
	}
	return info
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
