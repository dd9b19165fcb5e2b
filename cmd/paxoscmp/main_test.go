package main

import (
	"bytes"
	"path"
	"strings"
	"testing"

	icommon "github.com/dr0pdb/icecanepaxos/internal/common"
	"github.com/dr0pdb/icecanepaxos/pkg/common"
	"github.com/dr0pdb/icecanepaxos/test"
	"github.com/stretchr/testify/assert"
)

var testDirectory = path.Join(test.TestDirectory, "paxoscmp")

func TestRunPrintsInstancesInOrder(t *testing.T) {
	for _, codec := range []string{icommon.CodecText, icommon.CodecNative, icommon.CodecBigEndian} {
		test.CreateTestDirectory(testDirectory)

		conf := common.NewDefaultComparatorConfig()
		conf.DbPath = testDirectory
		conf.Codec = codec

		out := &bytes.Buffer{}
		err := run(conf, strings.NewReader("100\n9\n\n10\n2\n9\n"), out)
		assert.Nil(t, err, codec)
		assert.Equal(t, "2\n9\n10\n100\n", out.String(), codec)

		test.CleanupTestDirectory(testDirectory)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	test.CreateTestDirectory(testDirectory)
	defer test.CleanupTestDirectory(testDirectory)

	conf := common.NewDefaultComparatorConfig()
	conf.DbPath = testDirectory

	err := run(conf, strings.NewReader("1\nnot-a-number\n"), &bytes.Buffer{})
	assert.NotNil(t, err)

	conf.Codec = "hex"
	err = run(conf, strings.NewReader("1\n"), &bytes.Buffer{})
	assert.NotNil(t, err)
}

func TestRunKeepsInstancesAcrossRuns(t *testing.T) {
	test.CreateTestDirectory(testDirectory)
	defer test.CleanupTestDirectory(testDirectory)

	conf := common.NewDefaultComparatorConfig()
	conf.DbPath = testDirectory

	assert.Nil(t, run(conf, strings.NewReader("100\n2\n"), &bytes.Buffer{}))

	out := &bytes.Buffer{}
	assert.Nil(t, run(conf, strings.NewReader("9\n"), out))
	assert.Equal(t, "2\n9\n100\n", out.String())
}
