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

// Opts collects process-wide hooks, in the style of go-deadlock's Opts.
// Set fields before any acquisition runs.
var Opts struct {
	// OnViolation, if non-nil, is called with each ordering violation just
	// before the panic is raised. It exists for logging and for tests that
	// want to record the violation; it cannot suppress the panic, because
	// an out-of-order acquisition is never allowed to proceed.
	OnViolation func(*ViolationError)
}
