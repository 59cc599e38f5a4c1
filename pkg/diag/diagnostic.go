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
package diag

import "github.com/vushlang/vushc/pkg/source"

// Secondary attaches an explanatory caption to a secondary span, e.g. the
// location of a conflicting prior declaration.
type Secondary struct {
	Span    source.Span
	Caption string
}

// Diagnostic is a single structured compiler error or warning.
type Diagnostic struct {
	Kind      Kind
	Primary   source.Span
	Message   string
	Secondary []Secondary
}

// New constructs a diagnostic with no secondary spans.
func New(kind Kind, primary source.Span, message string) Diagnostic {
	return Diagnostic{Kind: kind, Primary: primary, Message: message}
}

// WithSecondary returns a copy of d with an additional secondary span.
func (d Diagnostic) WithSecondary(span source.Span, caption string) Diagnostic {
	d.Secondary = append(append([]Secondary{}, d.Secondary...), Secondary{span, caption})
	return d
}

// Severity returns the propagation class of this diagnostic.
func (d Diagnostic) Severity() Severity {
	return d.Kind.Severity()
}
