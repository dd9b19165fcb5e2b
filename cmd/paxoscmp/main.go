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

// paxoscmp reads paxos instance ids from stdin, one per line, stores them in a db ordered
// by the paxos comparator and prints them back in instance order.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dr0pdb/icecanepaxos/pkg/common"
	"github.com/dr0pdb/icecanepaxos/pkg/paxos"
	"github.com/dr0pdb/icecanepaxos/pkg/storage"
	log "github.com/sirupsen/logrus"
)

var (
	configFilePath = flag.String("config", "", "path of the yaml config file")
	dbPath         = flag.String("path", "", "directory path of the db")
	codec          = flag.String("codec", "", "key encoding: text, native or bigendian")
	logLevel       = flag.String("loglevel", "", "the level of log")
)

func main() {
	flag.Parse()

	conf := common.NewDefaultComparatorConfig()
	if *configFilePath != "" {
		conf.LoadFromFile(*configFilePath)
	}

	// flags override the config file
	if *dbPath != "" {
		conf.DbPath = *dbPath
	}
	if *codec != "" {
		conf.Codec = *codec
	}
	if *logLevel != "" {
		conf.LogLevel = *logLevel
	}

	if err := conf.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	level, _ := log.ParseLevel(conf.LogLevel)
	log.SetLevel(level)

	if err := run(conf, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}

// run stores the instance ids read from in and writes the db contents to out in comparator order.
func run(conf *common.ComparatorConfig, in io.Reader, out io.Writer) error {
	kc, err := paxos.CodecByName(conf.Codec)
	if err != nil {
		return err
	}

	paxos.Configure(kc)
	defer paxos.Shutdown()
	cmp := paxos.GetComparator()

	log.WithFields(log.Fields{"path": conf.DbPath, "comparator": cmp.Name()}).Info("paxoscmp::main::run; opening db")

	s, err := storage.NewStorageWithCustomComparator(conf.DbPath, cmp, &storage.Options{CreateIfNotExist: true})
	if err != nil {
		return err
	}
	if err = s.Open(); err != nil {
		return err
	}
	defer s.Close()

	scanner := bufio.NewScanner(in)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		id, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return fmt.Errorf("paxoscmp::main::run; invalid instance id %q on line %d", text, line)
		}
		if err = s.Set(cmp.Encode(id), []byte(text)); err != nil {
			return err
		}
	}
	if err = scanner.Err(); err != nil {
		return err
	}

	for itr := s.Scan(nil); itr.Valid(); itr.Next() {
		id, err := cmp.Decode(itr.Key())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d\n", id)
	}
	return nil
}
