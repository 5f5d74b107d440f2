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
package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-4, 0, 255))
	assert.Equal(t, 255, Clamp(300, 0, 255))
	assert.Equal(t, 0.5, Clamp(0.5, 0.0, 1.0))
}

func TestSaturate(t *testing.T) {
	huge := 1e308
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{name: "finite", in: 42.5, want: 42.5},
		{name: "positive overflow", in: huge + huge, want: math.MaxFloat64},
		{name: "negative overflow", in: -huge - huge, want: -math.MaxFloat64},
		{name: "nan", in: math.NaN(), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Saturate(tt.in))
		})
	}
}
