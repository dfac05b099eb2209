/**
 * Copyright 2026 The SqueefDB Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package catalog

import (
	"fmt"
	"strings"
)

// Type is the primitive kind of the values stored in a column.
type Type uint8

const (
	TypeChar Type = iota
	TypeBoolean
	TypeUint8
	TypeSint8
	TypeUint16
	TypeSint16
	TypeUint32
	TypeSint32
	TypeUint64
	TypeSint64
	TypeFloat32
	TypeFloat64
	TypeString

	numTypes
)

var typeNames = [numTypes]string{
	TypeChar:    "char",
	TypeBoolean: "boolean",
	TypeUint8:   "uint8",
	TypeSint8:   "sint8",
	TypeUint16:  "uint16",
	TypeSint16:  "sint16",
	TypeUint32:  "uint32",
	TypeSint32:  "sint32",
	TypeUint64:  "uint64",
	TypeSint64:  "sint64",
	TypeFloat32: "float32",
	TypeFloat64: "float64",
	TypeString:  "string",
}

// accepted spellings besides the canonical names
var typeAliases = map[string]Type{
	"bool":  TypeBoolean,
	"int8":  TypeSint8,
	"int16": TypeSint16,
	"int32": TypeSint32,
	"int64": TypeSint64,
}

// Types returns every valid type in declaration order.
func Types() []Type {
	res := make([]Type, 0, numTypes)
	for t := Type(0); t < numTypes; t++ {
		res = append(res, t)
	}
	return res
}

// Valid reports whether t is one of the declared types.
func (t Type) Valid() bool {
	return t < numTypes
}

func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
	return typeNames[t]
}

// ParseType returns the type with the given name. Matching is case insensitive.
func ParseType(name string) (Type, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range typeNames {
		if n == name {
			return Type(t), nil
		}
	}
	if t, ok := typeAliases[name]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("unknown column type %q", name)
}

// MarshalYAML writes the type by name.
func (t Type) MarshalYAML() (interface{}, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid column type %d", uint8(t))
	}
	return t.String(), nil
}

// UnmarshalYAML reads the type from its name.
func (t *Type) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	parsed, err := ParseType(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
