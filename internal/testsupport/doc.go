// Package testsupport holds fixtures shared by package tests: temp-dir
// configs, stub executables, and small generated media files.
package testsupport
