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
package lower

import (
	"github.com/vushlang/vushc/pkg/ast"
	"github.com/vushlang/vushc/pkg/types"
	"github.com/vushlang/vushc/pkg/util"
)

// lowerType resolves a syntactic ast.Type to its canonical *types.Type,
// hash-consing through the shared registry. A StructType whose name isn't
// yet registered fails (ok=false); the caller decides the right
// diagnostic for its context (RecursiveStruct during the pre-pass,
// UndefinedSymbol inside a function body).
func (e *Engine) lowerType(t ast.Type) (*types.Type, bool) {
	switch ty := t.(type) {
	case *ast.BuiltinType:
		return ty.Resolved, true
	case *ast.StructType:
		if st, ok := e.structTypes[ty.Name]; ok {
			return st, true
		}

		if bt, ok := e.bufferTypes[ty.Name]; ok {
			return bt, true
		}

		return nil, false
	case *ast.ArrayType:
		elem, ok := e.lowerType(ty.Elem)
		if !ok {
			return nil, false
		}

		var length util.Option[uint]

		if ty.Length != nil {
			length = util.Some(uint(*ty.Length))
		}

		return e.reg.Array(elem, length), true
	default:
		return nil, false
	}
}
