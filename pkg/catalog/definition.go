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
	"io/ioutil"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// definition is the layout of a schema definition file:
//
//	databases:
//	  - name: shop
//	    tables:
//	      - name: users
//	        columns:
//	          - {name: id, type: uint64, primary_key: true}
//	          - {name: email, type: string}
type definition struct {
	Databases []Database `yaml:"databases"`
}

// ParseDefinition decodes a yaml schema definition. Every database is validated
// and database names must be unique within the file.
func ParseDefinition(data []byte) ([]Database, error) {
	def := definition{}
	if err := yaml.UnmarshalStrict(data, &def); err != nil {
		return nil, fmt.Errorf("invalid schema definition: %w", err)
	}

	// reuse the catalog duplicate checks
	c, err := NewCatalog(def.Databases...)
	if err != nil {
		return nil, err
	}
	return c.Databases(), nil
}

// LoadDefinition reads and parses the schema definition at path.
func LoadDefinition(path string) ([]Database, error) {
	log.Info(fmt.Sprintf("catalog::definition::LoadDefinition; loading schema from file %s", path))
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDefinition(data)
}

// MarshalDefinition encodes databases in the schema definition format.
func MarshalDefinition(databases []Database) ([]byte, error) {
	return yaml.Marshal(&definition{Databases: databases})
}
