package test

import (
	"io/ioutil"
	"os"
	"path"
)

const (
	// TestDirectory is the scratch directory shared by the tests.
	TestDirectory = "/tmp/squeeftesting/"
)

var (
	// TestMessages - test data sent by clients
	TestMessages [][]byte = [][]byte{[]byte("hello"), []byte("CREATE DATABASE my_db"), []byte("OPEN DATABASE my_db"), []byte("DUMP")}
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

// WriteTestFile writes contents to name inside the test directory and returns the full path.
func WriteTestFile(testDirectory, name, contents string) (string, error) {
	p := path.Join(testDirectory, name)
	if err := ioutil.WriteFile(p, []byte(contents), 0644); err != nil {
		return "", err
	}
	return p, nil
}
