/**
 * Copyright 2020 The IcecaneDB Authors. All rights reserved.
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

package common

import (
	"fmt"
	"io/ioutil"

	icommon "github.com/dr0pdb/icecanepaxos/internal/common"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// ComparatorConfig defines the configuration settings for the paxos comparator and the db it is plugged into.
type ComparatorConfig struct {
	DbPath string `yaml:"dbPath"`

	// Codec is the key encoding used by the db. It is fixed for the lifetime of a db.
	Codec string `yaml:"codec"`

	LogLevel string `yaml:"logLevel"`
}

// NewDefaultComparatorConfig returns a new default comparator configuration.
func NewDefaultComparatorConfig() *ComparatorConfig {
	return &ComparatorConfig{
		DbPath:   "/var/lib/icecanepaxos",
		Codec:    icommon.CodecText,
		LogLevel: "info",
	}
}

// Validate validates a ComparatorConfig and returns an error if it's invalid.
func (conf *ComparatorConfig) Validate() error {
	if conf.DbPath == "" {
		return fmt.Errorf("invalid db path provided in config")
	}
	switch conf.Codec {
	case icommon.CodecText, icommon.CodecNative, icommon.CodecBigEndian:
	default:
		return fmt.Errorf("invalid codec %q provided in config", conf.Codec)
	}
	if _, err := log.ParseLevel(conf.LogLevel); err != nil {
		return fmt.Errorf("invalid log level provided in config: %v", err)
	}
	return nil
}

// LoadFromFile loads the config from the file. It assumes that config already has the defaults.
// In the case of an error, it leaves the config untouched.
func (conf *ComparatorConfig) LoadFromFile(path string) {
	log.Info(fmt.Sprintf("icecanepaxos::config::LoadFromFile; loading config from file %s", path))
	data, err := ioutil.ReadFile(path)
	if err != nil {
		log.Error(fmt.Sprintf("icecanepaxos::config::LoadFromFile; error reading config from file %s, error %s", path, err))
		return
	}
	fconf := ComparatorConfig{}
	err = yaml.Unmarshal(data, &fconf)
	if err != nil {
		log.Error(fmt.Sprintf("icecanepaxos::config::LoadFromFile; error unmarshalling config from file %s, error %s", path, err))
		return
	}

	log.WithFields(log.Fields{"config": fconf}).Debug("icecanepaxos::config::LoadFromFile; read contents from the file")

	// populate fields
	if fconf.DbPath != "" {
		conf.DbPath = fconf.DbPath
	}
	if fconf.Codec != "" {
		conf.Codec = fconf.Codec
	}
	if fconf.LogLevel != "" {
		conf.LogLevel = fconf.LogLevel
	}
}
