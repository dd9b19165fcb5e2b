package common

import (
	"io/ioutil"
	"path"
	"path/filepath"
	"testing"

	icommon "github.com/dr0pdb/icecanepaxos/internal/common"
	"github.com/dr0pdb/icecanepaxos/test"
	"github.com/stretchr/testify/assert"
)

var testDirectory = path.Join(test.TestDirectory, "common")

func TestDefaultConfigIsValid(t *testing.T) {
	conf := NewDefaultComparatorConfig()
	assert.Nil(t, conf.Validate(), "default config should be valid")
	assert.Equal(t, icommon.CodecText, conf.Codec)
}

func TestValidateRejectsUnknownCodec(t *testing.T) {
	conf := NewDefaultComparatorConfig()
	conf.Codec = "base64"
	assert.NotNil(t, conf.Validate(), "expected an error for an unknown codec")

	conf = NewDefaultComparatorConfig()
	conf.DbPath = ""
	assert.NotNil(t, conf.Validate(), "expected an error for an empty db path")

	conf = NewDefaultComparatorConfig()
	conf.LogLevel = "loud"
	assert.NotNil(t, conf.Validate(), "expected an error for an invalid log level")
}

func TestLoadFromFile(t *testing.T) {
	test.CreateTestDirectory(testDirectory)
	defer test.CleanupTestDirectory(testDirectory)

	cfgPath := filepath.Join(testDirectory, "config.yaml")
	data := []byte("dbPath: /tmp/paxosdb\ncodec: bigendian\n")
	assert.Nil(t, ioutil.WriteFile(cfgPath, data, 0644))

	conf := NewDefaultComparatorConfig()
	conf.LoadFromFile(cfgPath)

	assert.Equal(t, "/tmp/paxosdb", conf.DbPath)
	assert.Equal(t, icommon.CodecBigEndian, conf.Codec)
	assert.Equal(t, "info", conf.LogLevel, "fields missing from the file should keep their defaults")
	assert.Nil(t, conf.Validate())
}

func TestLoadFromMissingFileLeavesConfigUntouched(t *testing.T) {
	conf := NewDefaultComparatorConfig()
	conf.LoadFromFile(filepath.Join(testDirectory, "does-not-exist.yaml"))
	assert.Equal(t, NewDefaultComparatorConfig(), conf)
}
