// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lockorder

import (
	"fmt"
	"os"
)

// debugEnabled controls whether declaration and acquisition tracing is
// printed. Off by default; the checks themselves are always on.
var debugEnabled = false

func init() {
	if os.Getenv("LOCKORDER_DEBUG") != "" || os.Getenv("DEBUG") != "" {
		debugEnabled = true
	}
}

// Debugf prints a trace line for order declarations, token issuance, and
// acquisitions when debug mode is enabled.
func Debugf(format string, args ...any) {
	if debugEnabled {
		_, _ = fmt.Printf("DEBUG: %s\n", fmt.Sprintf(format, args...))
	}
}

// SetDebugEnabled allows programmatic control of debug tracing, useful in
// tests or when an application manages its own debug modes.
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}
