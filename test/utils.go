package test

import (
	"io/ioutil"
	"os"
	"path"
)

var (
	// TestDirectory is the scratch directory used by tests.
	TestDirectory = path.Join(os.TempDir(), "icecanepaxostest")

	// TestInstanceIDs - test data. Ascending numerically, not lexicographically as decimal strings.
	TestInstanceIDs []uint64 = []uint64{2, 9, 10, 99, 100, 1000, 4294967296}

	// TestValues - test data
	TestValues [][]byte = [][]byte{[]byte("Value1"), []byte("Value2"), []byte("Value3"), []byte("Value4"), []byte("Value5"), []byte("Value6"), []byte("Value7")}
)

// CreateTestDirectory creates a test directory for running tests.
func CreateTestDirectory(testDirectory string) {
	os.MkdirAll(testDirectory, os.ModePerm)
}

// CleanupTestDirectory cleans up the test directory.
func CleanupTestDirectory(testDirectory string) error {
	dir, err := ioutil.ReadDir(testDirectory)
	if err != nil {
		return err
	}
	for _, d := range dir {
		os.RemoveAll(path.Join([]string{testDirectory, d.Name()}...))
	}
	return nil
}
